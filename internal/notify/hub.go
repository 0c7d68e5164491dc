// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify delivers progress events from request handlers to the
// browser. Handlers are producers: Send enqueues on a bounded queue and
// never blocks. A single consumer, Run, fans events out to every
// subscriber, typically one per open websocket.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pdiddy/engagement-letters/internal/ids"
)

// EventType names the kind of progress event.
type EventType string

const (
	ProcessStart   EventType = "process-start"
	Processing     EventType = "processing"
	ProcessError   EventType = "process-error"
	ProcessResults EventType = "process-results"
	Progress       EventType = "progress"
	Complete       EventType = "complete"
)

// Event is one progress notification.
type Event struct {
	ID     string    `json:"id"`
	Type   EventType `json:"type"`
	Detail any       `json:"detail"`
	Time   time.Time `json:"time"`
}

// DefaultQueueSize is the queue capacity used when NewHub is given zero.
const DefaultQueueSize = 256

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 64

// Hub is a bounded producer/consumer event queue with fan-out.
type Hub struct {
	logger *slog.Logger
	ids    *ids.Source
	queue  chan Event

	mu   sync.Mutex
	subs map[chan Event]struct{}

	dropped atomic.Int64
}

// NewHub creates a hub whose queue holds size events.
func NewHub(logger *slog.Logger, size int) *Hub {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		ids:    ids.NewSource(),
		queue:  make(chan Event, size),
		subs:   make(map[chan Event]struct{}),
	}
}

// Send enqueues an event. When the queue is full the event is dropped and
// a warning is logged.
func (h *Hub) Send(typ EventType, detail any) Event {
	ev := Event{ID: h.ids.New(), Type: typ, Detail: detail, Time: time.Now().UTC()}
	select {
	case h.queue <- ev:
	default:
		h.dropped.Add(1)
		h.logger.Warn("event queue full, dropping event", "type", typ, "id", ev.ID)
	}
	return ev
}

// Dropped returns the number of events dropped because the queue was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Run consumes the queue until ctx is done, delivering each event to every
// subscriber. A subscriber that is not keeping up misses the event.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-h.queue:
			h.broadcast(ev)
		}
	}
}

func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Warn("subscriber is slow, dropping event", "type", ev.Type, "id", ev.ID)
		}
	}
}

// Subscribe registers a new subscriber. The returned cancel function
// unregisters it and closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of registered subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
