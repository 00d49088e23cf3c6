package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/byZeet/centralita-neron/internal/domain"
	"github.com/byZeet/centralita-neron/internal/observability"
)

// ChannelSource fetches the channel list visible to the viewer.
type ChannelSource interface {
	FetchChannels(ctx context.Context) ([]domain.Channel, error)
}

// MessageSource fetches the full message list of one channel.
type MessageSource interface {
	FetchMessages(ctx context.Context, channelID int64) ([]domain.Message, error)
}

// ChannelWatcher applies the board's poll-and-diff pattern to the chat
// channel list. Same ownership rules as the board poller: the baseline is
// only advanced after a successful fetch, and the first fetch is silent.
//
// Unlike the board poller, the chat watchers are per-viewer components:
// channel visibility depends on the viewing operator's department and
// memberships, so the server runs no global instance. Consumers create one
// per session.
type ChannelWatcher struct {
	source   ChannelSource
	sink     Sink
	viewerID int64
	interval time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics

	prev []domain.Channel
	seen bool
}

// NewChannelWatcher constructs a watcher for the viewer's channel list.
func NewChannelWatcher(source ChannelSource, sink Sink, viewerID int64, interval time.Duration, logger *zap.Logger, metrics *observability.Metrics) *ChannelWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChannelWatcher{
		source:   source,
		sink:     sink,
		viewerID: viewerID,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run polls until the context is cancelled.
func (w *ChannelWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Cycle(ctx)
		}
	}
}

// Cycle performs one fetch-diff-promote round.
func (w *ChannelWatcher) Cycle(ctx context.Context) {
	channels, err := w.source.FetchChannels(ctx)
	if err != nil {
		w.metrics.RecordPoll("channels", "error")
		w.logger.Debug("channel poll failed; keeping previous list", zap.Error(err))
		return
	}
	w.metrics.RecordPoll("channels", "ok")

	if w.seen {
		if events := DiffChannels(w.prev, channels, w.viewerID); len(events) > 0 && w.sink != nil {
			w.sink.Notify(ctx, events)
		}
	}
	w.prev = channels
	w.seen = true
}

// MessageWatcher applies the poll-and-diff pattern to one open channel's
// messages.
type MessageWatcher struct {
	source    MessageSource
	sink      Sink
	channelID int64
	viewerID  int64
	interval  time.Duration
	logger    *zap.Logger
	metrics   *observability.Metrics

	prev []domain.Message
	seen bool
}

// NewMessageWatcher constructs a watcher for a single channel.
func NewMessageWatcher(source MessageSource, sink Sink, channelID, viewerID int64, interval time.Duration, logger *zap.Logger, metrics *observability.Metrics) *MessageWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageWatcher{
		source:    source,
		sink:      sink,
		channelID: channelID,
		viewerID:  viewerID,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run polls until the context is cancelled.
func (w *MessageWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Cycle(ctx)
		}
	}
}

// Cycle performs one fetch-diff-promote round.
func (w *MessageWatcher) Cycle(ctx context.Context) {
	messages, err := w.source.FetchMessages(ctx, w.channelID)
	if err != nil {
		w.metrics.RecordPoll("messages", "error")
		w.logger.Debug("message poll failed; keeping previous list", zap.Error(err))
		return
	}
	w.metrics.RecordPoll("messages", "ok")

	if w.seen {
		if events := DiffMessages(w.prev, messages, w.viewerID); len(events) > 0 && w.sink != nil {
			w.sink.Notify(ctx, events)
		}
	}
	w.prev = messages
	w.seen = true
}
