package es

import (
	"github.com/google/uuid"
)

// Event is an immutable fact about one aggregate instance.
//
// Concrete events are plain value types embedding [BaseEvent]. They are
// compared structurally and must not be mutated once constructed.
type Event interface {
	// GetEntityID returns the id of the aggregate the event belongs to.
	GetEntityID() uuid.UUID
	// GetVersion returns the aggregate version the event was produced at.
	GetVersion() Version
}

// BaseEvent carries the identity part shared by all events.
type BaseEvent struct {
	EntityID uuid.UUID `json:"entity_id"`
	Version  Version   `json:"version"`
}

// NewBaseEvent returns the identity part of an event raised by agg at its
// current version.
func NewBaseEvent(agg interface {
	GetID() uuid.UUID
	GetVersion() Version
}) BaseEvent {
	return BaseEvent{EntityID: agg.GetID(), Version: agg.GetVersion()}
}

func (e BaseEvent) GetEntityID() uuid.UUID { return e.EntityID }
func (e BaseEvent) GetVersion() Version    { return e.Version }

var _ Event = BaseEvent{}
