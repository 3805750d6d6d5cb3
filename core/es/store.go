package es

import (
	"context"
	"maps"
	"slices"

	"github.com/google/uuid"
)

// StoredEntity is the persisted representation of an aggregate as handed
// out by an EventStore. It is a read-only transport shape.
type StoredEntity struct {
	EntityID       uuid.UUID         `json:"entity_id"`
	Type           string            `json:"type"`
	CurrentVersion Version           `json:"current_version"`
	Properties     map[string]string `json:"properties,omitempty"`
	Events         []Envelope        `json:"events"`
}

func (s StoredEntity) clone() StoredEntity {
	s.Properties = maps.Clone(s.Properties)
	s.Events = slices.Clone(s.Events)
	return s
}

func (s StoredEntity) hasProperty(property, value string) bool {
	v, ok := s.Properties[property]
	return ok && v == value
}

// EventStore is the boundary to the document store holding stored entities
// of one collection. Implementations must be safe for concurrent use.
type EventStore interface {
	// Get returns ErrAggregateNotFound when there is no record for id.
	Get(ctx context.Context, id uuid.UUID) (*StoredEntity, error)
	// All returns every record in store defined order.
	All(ctx context.Context) ([]StoredEntity, error)
	// FindFirst returns ErrAggregateNotFound when no record matches.
	FindFirst(ctx context.Context, property, value string) (*StoredEntity, error)
	Find(ctx context.Context, property, value string) ([]StoredEntity, error)

	// Insert creates a record. It fails with ErrEntityExists if the id is taken.
	Insert(ctx context.Context, entity StoredEntity) error
	// AppendEvents extends the event list of an existing record. The current
	// version of the record must equal expected, otherwise
	// ErrConcurrencyConflict is returned. A non-nil properties map replaces
	// the stored properties in the same write.
	AppendEvents(ctx context.Context, id uuid.UUID, expected Version, events []Envelope, properties map[string]string) error
	// UpdateProperties replaces the properties of an existing record.
	UpdateProperties(ctx context.Context, id uuid.UUID, properties map[string]string) error
}
