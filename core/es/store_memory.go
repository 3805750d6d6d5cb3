package es

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/codewandler/folio-go/core/ds"
)

// InMemoryStore keeps stored entities in insertion order. It is meant for
// tests and tooling and is safe for concurrent use. Records are copied in and
// out, callers never share memory with the store.
type InMemoryStore struct {
	mu       sync.RWMutex
	log      *slog.Logger
	order    *ds.Set[uuid.UUID]
	entities map[uuid.UUID]StoredEntity
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		log:      slog.Default().With(slog.String("store", "memory")),
		order:    ds.NewSet[uuid.UUID](),
		entities: map[uuid.UUID]StoredEntity{},
	}
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*StoredEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAggregateNotFound, id)
	}
	out := e.clone()
	return &out, nil
}

func (s *InMemoryStore) All(_ context.Context) ([]StoredEntity, error) {
	return s.filter(func(StoredEntity) bool { return true }), nil
}

func (s *InMemoryStore) FindFirst(_ context.Context, property, value string) (*StoredEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.order.All() {
		if e := s.entities[id]; e.hasProperty(property, value) {
			out := e.clone()
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s=%s", ErrAggregateNotFound, property, value)
}

func (s *InMemoryStore) Find(_ context.Context, property, value string) ([]StoredEntity, error) {
	return s.filter(func(e StoredEntity) bool { return e.hasProperty(property, value) }), nil
}

func (s *InMemoryStore) filter(match func(StoredEntity) bool) []StoredEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StoredEntity, 0, s.order.Len())
	for id := range s.order.All() {
		if e := s.entities[id]; match(e) {
			out = append(out, e.clone())
		}
	}
	return out
}

func (s *InMemoryStore) Insert(_ context.Context, entity StoredEntity) error {
	if err := validateEnvelopes(entity.EntityID, 0, entity.Events); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.order.Add(entity.EntityID) {
		return fmt.Errorf("%w: %s", ErrEntityExists, entity.EntityID)
	}
	entity = entity.clone()
	entity.CurrentVersion = Version(len(entity.Events))
	s.entities[entity.EntityID] = entity

	s.log.Debug(
		"insert",
		slog.String("id", entity.EntityID.String()),
		slog.String("type", entity.Type),
		entity.CurrentVersion.SlogAttr(),
	)
	return nil
}

func (s *InMemoryStore) AppendEvents(_ context.Context, id uuid.UUID, expected Version, events []Envelope, properties map[string]string) error {
	if err := validateEnvelopes(id, expected, events); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAggregateNotFound, id)
	}
	if e.CurrentVersion != expected {
		return fmt.Errorf("%w: %s is at version %d, expected %d", ErrConcurrencyConflict, id, e.CurrentVersion, expected)
	}
	if len(events) == 0 {
		return nil
	}

	e.Events = append(e.Events[:len(e.Events):len(e.Events)], events...)
	e.CurrentVersion += Version(len(events))
	if properties != nil {
		e.Properties = maps.Clone(properties)
	}
	s.entities[id] = e

	s.log.Debug(
		"append",
		slog.String("id", id.String()),
		e.CurrentVersion.SlogAttr(),
		slog.Int("num_events", len(events)),
	)
	return nil
}

func (s *InMemoryStore) UpdateProperties(_ context.Context, id uuid.UUID, properties map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAggregateNotFound, id)
	}
	e.Properties = maps.Clone(properties)
	s.entities[id] = e
	return nil
}

// validateEnvelopes checks that events belong to id and continue the stream
// at version from.
func validateEnvelopes(id uuid.UUID, from Version, events []Envelope) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: entity id is empty", ErrInvalidArgument)
	}
	for i, e := range events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
		if e.EntityID != id {
			return fmt.Errorf("%w: event %s belongs to %s, not %s", ErrInvalidArgument, e.ID, e.EntityID, id)
		}
		if want := from + Version(i); e.Version != want {
			return fmt.Errorf("%w: event %s has version %d, expected %d", ErrInvalidArgument, e.ID, e.Version, want)
		}
	}
	return nil
}

var _ EventStore = (*InMemoryStore)(nil)
