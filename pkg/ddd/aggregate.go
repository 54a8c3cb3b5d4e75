package ddd

import (
	"context"
	"sync"

	"kycore/pkg/domain"
)

// EventKind names a domain event, e.g. "user.kyc_approved".
type EventKind string

func (k EventKind) String() string { return string(k) }

// Event is a fact raised by an aggregate.
type Event interface {
	Kind() EventKind
	AggregateID() domain.ID
	OccurredAt() domain.Timestamp
}

// EventBase carries the fields every event shares. Embed it in concrete events.
type EventBase struct {
	aggregateID domain.ID
	occurredAt  domain.Timestamp
}

// NewEventBase stamps an event for aggregateID with the current time.
func NewEventBase(aggregateID domain.ID) EventBase {
	return EventBase{aggregateID: aggregateID, occurredAt: domain.Now()}
}

func (b EventBase) AggregateID() domain.ID       { return b.aggregateID }
func (b EventBase) OccurredAt() domain.Timestamp { return b.occurredAt }

// Emitter delivers an event to every registered handler and waits for them.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// EventSource is implemented by aggregates.
type EventSource interface {
	PendingEvents() []Event
	PublishEvents(ctx context.Context, emitter Emitter) error
}

// Aggregate is an Entity with a queue of pending events.
type Aggregate struct {
	Entity

	mu     sync.Mutex
	events []Event
}

// AddEvent queues event until the next successful publication.
func (a *Aggregate) AddEvent(event Event) {
	a.mu.Lock()
	a.events = append(a.events, event)
	a.mu.Unlock()
}

// PendingEvents returns a copy of the queue.
func (a *Aggregate) PendingEvents() []Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Event, len(a.events))
	copy(out, a.events)
	return out
}

// PublishEvents emits the queued events one at a time in the order they were
// added and clears them once all were delivered. Emission stops at the first
// failure and the queue is left intact. Events queued while publishing are kept
// for the next call.
func (a *Aggregate) PublishEvents(ctx context.Context, emitter Emitter) error {
	pending := a.PendingEvents()
	if len(pending) == 0 {
		return nil
	}

	for _, event := range pending {
		if err := emitter.Emit(ctx, event); err != nil {
			return err
		}
	}

	a.mu.Lock()
	a.events = a.events[len(pending):]
	a.mu.Unlock()
	return nil
}
