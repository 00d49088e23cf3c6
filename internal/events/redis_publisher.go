package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher pushes events onto a Redis list for external consumers.
// Publishing is best-effort: a failed push is logged and dropped, never
// surfaced to the request that triggered the event.
type RedisPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewRedisPublisher creates a publisher. A nil client makes Handle a no-op.
func NewRedisPublisher(client *redis.Client, stream string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream, logger: logger}
}

// RegisterWith subscribes the publisher to every ticket and presence event.
func (p *RedisPublisher) RegisterWith(dispatcher Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range []EventType{
		EventTicketCreated,
		EventTicketPickedUp,
		EventTicketTransferred,
		EventTicketCompleted,
		EventTicketsCleaned,
		EventPresenceChanged,
	} {
		dispatcher.Subscribe(eventType, p.Handle)
	}
}

// Handle serializes the event and appends it to the configured list.
func (p *RedisPublisher) Handle(ctx context.Context, event Event) error {
	if p.client == nil || p.stream == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("marshal event", zap.Error(err), zap.String("type", string(event.Type)))
		return nil
	}
	if err := p.client.RPush(ctx, p.stream, body).Err(); err != nil {
		p.logger.Warn("publish event to redis", zap.Error(err), zap.String("type", string(event.Type)))
	}
	return nil
}
