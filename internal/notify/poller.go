package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/byZeet/centralita-neron/internal/observability"
)

// Source fetches a full board snapshot.
type Source interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// Sink receives the events derived from one poll cycle.
type Sink interface {
	Notify(ctx context.Context, events []Event)
}

// Poller owns the retained previous snapshot and drives the diff on a fixed
// cadence. The previous snapshot is single-owner state: only the polling loop
// reads or replaces it, and only after a successful fetch. A failed fetch
// skips the diff for that cycle and leaves the baseline untouched, so the
// next successful cycle diffs against the last state that was actually
// observed.
type Poller struct {
	source   Source
	sink     Sink
	viewerID int64
	interval time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics

	// consecutive fetch failures; crossing the threshold logs a warning
	failures      int
	warnThreshold int

	prev *Snapshot
}

// PollerOptions bundles poller construction parameters.
type PollerOptions struct {
	Source        Source
	Sink          Sink
	ViewerID      int64
	Interval      time.Duration
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	WarnThreshold int
}

// NewPoller constructs a poller. The interval is a tuning knob, not a
// correctness parameter.
func NewPoller(opts PollerOptions) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := opts.WarnThreshold
	if threshold <= 0 {
		threshold = 5
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		source:        opts.Source,
		sink:          opts.Sink,
		viewerID:      opts.ViewerID,
		interval:      interval,
		logger:        logger,
		metrics:       opts.Metrics,
		warnThreshold: threshold,
	}
}

// Run polls until the context is cancelled. Transient fetch errors are
// retried on the next tick and never stop the loop.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("board poller stopped")
			return
		case <-ticker.C:
			p.Cycle(ctx)
		}
	}
}

// Cycle performs one fetch-diff-promote round. Exported so tests and callers
// with their own scheduling can drive the poller without a ticker.
func (p *Poller) Cycle(ctx context.Context) {
	snap, err := p.source.Fetch(ctx)
	if err != nil {
		p.failures++
		p.metrics.RecordPoll("board", "error")
		if p.failures == p.warnThreshold {
			p.logger.Warn("board poll failing repeatedly",
				zap.Int("consecutive_failures", p.failures), zap.Error(err))
		} else {
			p.logger.Debug("board poll failed; keeping previous snapshot", zap.Error(err))
		}
		return
	}
	p.failures = 0
	p.metrics.RecordPoll("board", "ok")

	// First successful poll establishes the baseline without emitting: with
	// no prior snapshot there is no diff, and announcing the entire board as
	// "new" on connect would be noise.
	if p.prev != nil {
		if events := Diff(*p.prev, snap, p.viewerID); len(events) > 0 && p.sink != nil {
			p.sink.Notify(ctx, events)
		}
	}
	p.prev = &snap
}

// LogSink renders notification events as structured log lines. It stands in
// for the UI toast layer on the server side.
type LogSink struct {
	Logger *zap.Logger
}

// Notify logs each event with its variant-specific fields.
func (s LogSink) Notify(_ context.Context, events []Event) {
	for _, event := range events {
		switch e := event.(type) {
		case TicketCreated:
			s.Logger.Info("ticket created",
				zap.Int64("ticket_id", e.Ticket.ID),
				zap.String("client", e.Ticket.ClientName))
		case TicketPickedUp:
			s.Logger.Info("ticket picked up",
				zap.Int64("ticket_id", e.Ticket.ID),
				zap.Int64("assignee", e.AssigneeID))
		case TicketTransferred:
			s.Logger.Info("ticket transferred",
				zap.Int64("ticket_id", e.Ticket.ID),
				zap.Int64("from", e.FromID),
				zap.Int64("to", e.ToID),
				zap.Bool("to_viewer", e.ToViewer))
		case TicketCompleted:
			s.Logger.Info("ticket completed",
				zap.Int64("ticket_id", e.Ticket.ID),
				zap.Int64("completed_by", e.CompletedBy))
		case PresenceChanged:
			s.Logger.Info("presence changed",
				zap.Int64("operator_id", e.Operator.ID),
				zap.String("name", e.Operator.Name),
				zap.String("status", string(e.NewStatus)))
		case ChannelCreated:
			s.Logger.Info("channel created",
				zap.Int64("channel_id", e.Channel.ID),
				zap.String("type", string(e.Channel.Type)))
		case MessageReceived:
			s.Logger.Info("message received",
				zap.Int64("channel_id", e.Message.ChannelID),
				zap.Int64("sender", e.Message.SenderID))
		}
	}
}
