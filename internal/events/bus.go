// Package events fans configuration change events out to in-process
// subscribers and streaming watchers.
package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conduitllm/admin/internal/cachemgmt"
)

const watchBuffer = 16

// Handler receives a published event. Handlers run synchronously in
// subscription order.
type Handler func(ctx context.Context, event cachemgmt.ConfigurationChangeEvent) error

type subscriber struct {
	name string
	fn   Handler
}

// Bus implements cachemgmt.EventPublisher.
type Bus struct {
	mu       sync.RWMutex
	handlers []subscriber
	watchers map[string]chan cachemgmt.ConfigurationChangeEvent
	closed   bool

	log *slog.Logger
	now func() time.Time
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		watchers: make(map[string]chan cachemgmt.ConfigurationChangeEvent),
		log:      logger.With("component", "event-bus"),
		now:      time.Now,
	}
}

// Subscribe registers a named handler.
func (b *Bus) Subscribe(name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, subscriber{name: name, fn: fn})
}

// Watch returns a buffered channel receiving every event published after the
// call. Slow watchers miss events instead of blocking publishers.
func (b *Bus) Watch() (string, <-chan cachemgmt.ConfigurationChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan cachemgmt.ConfigurationChangeEvent, watchBuffer)
	if b.closed {
		close(ch)
		return id, ch
	}
	b.watchers[id] = ch
	return id, ch
}

// Unwatch removes a watcher and closes its channel.
func (b *Bus) Unwatch(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.watchers[id]; ok {
		close(ch)
		delete(b.watchers, id)
	}
}

// ErrClosed is returned by Publish once the bus has been closed.
var ErrClosed = errors.New("event bus closed")

// Publish implements cachemgmt.EventPublisher. Every handler is called even
// when an earlier one fails. Handler failures are logged and not returned: the
// change they react to has already been applied.
func (b *Bus) Publish(ctx context.Context, event cachemgmt.ConfigurationChangeEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = b.now().UTC()
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	handlers := make([]subscriber, len(b.handlers))
	copy(handlers, b.handlers)
	for id, ch := range b.watchers {
		select {
		case ch <- event:
		default:
			b.log.WarnContext(ctx, "Watcher channel full, skipping event", "watcher_id", id, "event_id", event.ID)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h.fn(ctx, event); err != nil {
			b.log.ErrorContext(ctx, "Event handler failed",
				"handler", h.name,
				"event_id", event.ID,
				"region", event.Region,
				"err", err)
		}
	}
	return nil
}

// Close closes every watcher channel. Handlers stay registered.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.watchers {
		close(ch)
		delete(b.watchers, id)
	}
	b.closed = true
	return nil
}

var _ cachemgmt.EventPublisher = (*Bus)(nil)
