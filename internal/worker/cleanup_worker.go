package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/byZeet/centralita-neron/internal/config"
	"github.com/byZeet/centralita-neron/internal/service"
)

// Weekly maintenance schedule: completed tickets older than the configured
// age are purged Friday evening, chat history is wiped Sunday night.
const (
	ticketCleanupWeekday = time.Friday
	ticketCleanupHour    = 18
	chatCleanupWeekday   = time.Sunday
	chatCleanupHour      = 0
)

// CleanupWorker runs the scheduled destructive maintenance jobs. Neither job
// is part of the ticket state machine; both are external maintenance
// operations with no transition semantics.
type CleanupWorker struct {
	tickets *service.TicketService
	chat    *service.ChatService
	cfg     config.CleanupConfig
	logger  *zap.Logger
	loc     *time.Location
}

// NewCleanupWorker constructs the worker. Schedule times are interpreted in
// Europe/Madrid, falling back to the host zone if tzdata is unavailable.
func NewCleanupWorker(tickets *service.TicketService, chat *service.ChatService, cfg config.CleanupConfig, logger *zap.Logger) *CleanupWorker {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		logger.Warn("timezone unavailable, using host zone", zap.Error(err))
		loc = time.Local
	}
	return &CleanupWorker{tickets: tickets, chat: chat, cfg: cfg, logger: logger, loc: loc}
}

// Run fires each job at its weekly slot until the context is cancelled.
func (w *CleanupWorker) Run(ctx context.Context) {
	if !w.cfg.Enabled {
		w.logger.Info("cleanup scheduler disabled")
		return
	}
	for {
		now := time.Now().In(w.loc)
		ticketAt := nextFire(now, ticketCleanupWeekday, ticketCleanupHour)
		chatAt := nextFire(now, chatCleanupWeekday, chatCleanupHour)

		at := ticketAt
		job := w.runTicketCleanup
		if chatAt.Before(ticketAt) {
			at = chatAt
			job = w.runChatCleanup
		}

		timer := time.NewTimer(at.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info("cleanup scheduler stopped")
			return
		case <-timer.C:
			job(ctx)
		}
	}
}

func (w *CleanupWorker) runTicketCleanup(ctx context.Context) {
	maxAge := time.Duration(w.cfg.TicketMaxAgeDays) * 24 * time.Hour
	deleted, err := w.tickets.CleanupAged(ctx, maxAge)
	if err != nil {
		w.logger.Error("scheduled ticket cleanup failed", zap.Error(err))
		return
	}
	w.logger.Info("scheduled ticket cleanup done", zap.Int64("deleted", deleted))
}

func (w *CleanupWorker) runChatCleanup(ctx context.Context) {
	deleted, err := w.chat.PurgeMessages(ctx)
	if err != nil {
		w.logger.Error("scheduled chat cleanup failed", zap.Error(err))
		return
	}
	w.logger.Info("scheduled chat cleanup done", zap.Int64("deleted", deleted))
}

// nextFire returns the next occurrence of weekday at hour:00 strictly after
// now.
func nextFire(now time.Time, weekday time.Weekday, hour int) time.Time {
	fire := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	fire = fire.AddDate(0, 0, days)
	if !fire.After(now) {
		fire = fire.AddDate(0, 0, 7)
	}
	return fire
}
