// Package events dispatches domain events to the handlers registered for their
// kind. Emit waits for every handler, which is what aggregates rely on to clear
// their queue only once delivery succeeded.
package events

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"kycore/pkg/ddd"
)

// Handler reacts to one event.
type Handler interface {
	Handle(ctx context.Context, event ddd.Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event ddd.Event) error

func (f HandlerFunc) Handle(ctx context.Context, event ddd.Event) error {
	return f(ctx, event)
}

// Dispatcher routes events by kind. It is safe for concurrent use.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[ddd.EventKind][]Handler
	fallback []Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[ddd.EventKind][]Handler)}
}

// Register adds a handler for kind.
func (d *Dispatcher) Register(kind ddd.EventKind, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], handler)
}

// RegisterAll adds a handler that receives every event, such as a log sink.
func (d *Dispatcher) RegisterAll(handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = append(d.fallback, handler)
}

// Emit runs all handlers for the event's kind concurrently and waits for them.
// Events nobody listens to are dropped.
func (d *Dispatcher) Emit(ctx context.Context, event ddd.Event) error {
	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.handlers[event.Kind()])+len(d.fallback))
	handlers = append(handlers, d.handlers[event.Kind()]...)
	handlers = append(handlers, d.fallback...)
	d.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, h := range handlers {
		g.Go(func() error {
			if err := h.Handle(gctx, event); err != nil {
				return fmt.Errorf("handle %s: %w", event.Kind(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
