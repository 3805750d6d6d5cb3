package es

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/codewandler/folio-go/core/es/assert"
)

var (
	ErrAggregateNotFound    = errors.New("aggregate not found")
	ErrEntityExists         = errors.New("entity already exists")
	ErrConcurrencyConflict  = errors.New("concurrency conflict")
	ErrUnknownEventType     = errors.New("unknown event type")
	ErrUnknownAggregateType = errors.New("unknown aggregate type")
	// ErrUnsupportedEventType is returned when an aggregate has no apply
	// logic for an event. Replaying such an event is a schema bug, retrying
	// will not help.
	ErrUnsupportedEventType = errors.New("unsupported event type")
	// ErrInvalidArgument is returned by aggregate operations whose input
	// violates a precondition. The aggregate is left untouched.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Aggregate is an entity whose state is rebuilt by replaying its events.
//
// Implementations embed [TrackedEntity] and provide GetType and Apply. Apply
// is an exhaustive type switch over the aggregate's events whose default arm
// returns [UnsupportedEvent]:
//
//	func (c *Counter) Apply(event es.Event) error {
//	    switch e := event.(type) {
//	    case Incremented:
//	        c.count += e.By
//	        return nil
//	    default:
//	        return es.UnsupportedEvent(c, event)
//	    }
//	}
//
// Apply only mutates state. Version bookkeeping and publishing are done by
// [ApplyEvents] and [ApplyAndPublish], so replay and live mutation run the
// exact same code path.
type Aggregate interface {
	GetID() uuid.UUID
	// GetType returns the type discriminator persisted with the aggregate.
	GetType() string
	// GetVersion returns the number of events applied since construction.
	GetVersion() Version
	Apply(event Event) error

	// FetchEvents drains the events applied but not yet persisted.
	FetchEvents() []Event
	// PendingEvents returns the number of events FetchEvents would return.
	PendingEvents() int

	incrementVersion()
	publish(event Event)
}

// TrackedEntity combines identity, version and the pending event list.
// Embed it into concrete aggregates.
type TrackedEntity struct {
	id      uuid.UUID
	version Version
	pending EventList
}

// NewTrackedEntity returns a blank entity with version 0.
func NewTrackedEntity(id uuid.UUID) TrackedEntity {
	return TrackedEntity{id: id}
}

func (t *TrackedEntity) GetID() uuid.UUID     { return t.id }
func (t *TrackedEntity) GetVersion() Version  { return t.version }
func (t *TrackedEntity) FetchEvents() []Event { return t.pending.Fetch() }
func (t *TrackedEntity) PendingEvents() int   { return t.pending.Len() }
func (t *TrackedEntity) incrementVersion()    { t.version++ }
func (t *TrackedEntity) publish(event Event)  { t.PublishEvent(event) }

// PublishEvent queues an already applied event for persistence. Aggregates
// normally go through ApplyAndPublish instead.
func (t *TrackedEntity) PublishEvent(event Event) { t.pending.Add(event) }

// Checked runs thenFunc only when c holds. A failed condition is reported as
// ErrInvalidArgument and nothing is applied.
func (t *TrackedEntity) Checked(c assert.Cond, thenFunc func() error) error {
	if err := c.Check(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return thenFunc()
}

// UnsupportedEvent is the default arm of an aggregate's Apply switch.
func UnsupportedEvent(agg Aggregate, event Event) error {
	return fmt.Errorf("%w: %T on %s", ErrUnsupportedEventType, event, agg.GetType())
}

// ApplyEvents replays events onto agg in order. Every successfully applied
// event increments the version by one. The first failing event stops the
// replay; events applied before it are not rolled back.
func ApplyEvents(agg Aggregate, events ...Event) error {
	for i, ev := range events {
		if err := agg.Apply(ev); err != nil {
			return fmt.Errorf("failed to apply event %d of %d to %s %s: %w", i+1, len(events), agg.GetType(), agg.GetID(), err)
		}
		agg.incrementVersion()
	}
	return nil
}

// ApplyAndPublish is the live mutation path: every event is applied exactly
// as during replay and then queued for persistence.
// Events implementing Validate() error are all validated first, so a failed
// validation leaves agg untouched. Apply errors are not rolled back: events
// before the failing one stay applied and queued, keeping state and the
// pending list in step. Callers emitting several events check their
// preconditions up front and treat an Apply error as a programming error.
func ApplyAndPublish(agg Aggregate, events ...Event) error {
	for _, ev := range events {
		if v, ok := ev.(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("%w: invalid event %T: %w", ErrInvalidArgument, ev, err)
			}
		}
	}
	for _, ev := range events {
		if err := ApplyEvents(agg, ev); err != nil {
			return err
		}
		agg.publish(ev)
	}
	return nil
}

// ApplyAndPublishD defers ApplyAndPublish, handy as the thenFunc of Checked.
func ApplyAndPublishD(agg Aggregate, events ...Event) func() error {
	return func() error { return ApplyAndPublish(agg, events...) }
}
