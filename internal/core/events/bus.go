package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/frahmantamala/hostel-management/internal"
)

// ErrBusClosed is returned by Publish once Drain has been called.
var ErrBusClosed = errors.New("event bus is draining")

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string { return e.Type }
func (e BaseEvent) EventID() string { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) Payload() interface{} { return e.Data }

type Handler func(ctx context.Context, event Event) error

// Publisher is what services depend on, so tests can record events without a bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventBus is an in-process fan-out. Async handlers are tracked so shutdown
// can wait for audit writes still in flight.
type EventBus struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool

	inflight sync.WaitGroup
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debug("event handler registered",
		"event_type", eventType,
		"total_handlers", len(eb.handlers[eventType]))
}

// EventTypes returns the subscribed event types in name order.
func (eb *EventBus) EventTypes() []string {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	types := make([]string, 0, len(eb.handlers))
	for t := range eb.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Publish runs every handler in its own goroutine on a context detached from
// the caller, so handlers outlive the HTTP response.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	if eb.closed {
		eb.mu.RUnlock()
		return ErrBusClosed
	}
	handlers := eb.handlers[event.EventType()]
	eb.inflight.Add(len(handlers))
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	hctx := context.WithoutCancel(ctx)
	for _, h := range handlers {
		go func(h Handler) {
			defer eb.inflight.Done()
			_ = eb.dispatch(hctx, event, h)
		}(h)
	}
	return nil
}

// PublishSync runs the handlers in order on the caller's goroutine and joins
// their errors.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := append([]Handler(nil), eb.handlers[event.EventType()]...)
	eb.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := eb.dispatch(ctx, event, h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// dispatch turns a handler panic into an error and logs any failure with the
// publishing request's trace id.
func (eb *EventBus) dispatch(ctx context.Context, event Event, h Handler) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("event handler panicked: %v", rec)
		}
		if err != nil {
			eb.logger.ErrorContext(ctx, "event handler failed",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"trace_id", internal.TraceIDFromContext(ctx),
				"error", err)
		}
	}()
	return h(ctx, event)
}

// Drain stops accepting events and waits for in-flight handlers until ctx is
// done.
func (eb *EventBus) Drain(ctx context.Context) error {
	eb.mu.Lock()
	eb.closed = true
	eb.mu.Unlock()

	done := make(chan struct{})
	go func() {
		eb.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
