package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/byZeet/centralita-neron/internal/events"
)

// AuditService writes every domain event to the structured log, giving the
// board an append-only trail of who did what.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to all event types.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketPickedUp,
		events.EventTicketTransferred,
		events.EventTicketCompleted,
		events.EventTicketsCleaned,
		events.EventPresenceChanged,
	} {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload),
	}
	if event.Actor != nil {
		fields = append(fields, zap.Int64("actor", *event.Actor))
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}
