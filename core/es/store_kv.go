package es

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/google/uuid"

	"github.com/codewandler/folio-go/core/sf"
	"github.com/codewandler/folio-go/ports/kv"
)

type storedDoc struct {
	entity   StoredEntity
	revision uint64
}

// KVStore keeps one JSON document per entity under "<collection>.<id>" in a
// kv.Store. Writes are revision checked, so two processes appending to the
// same entity get ErrConcurrencyConflict rather than lost events.
type KVStore struct {
	kv         kv.Store
	collection string
	prefix     string
	log        *slog.Logger
	metrics    ESMetrics
	reads      *sf.Group[storedDoc]
}

type KVStoreOption interface{ applyToKVStore(*KVStore) }

func (o LogOption) applyToKVStore(s *KVStore)       { s.log = o.v }
func (o ESMetricsOption) applyToKVStore(s *KVStore) { s.metrics = o.v }

// NewKVStore returns the store for one collection, usually one per aggregate
// type ("calendar", "stock", ...).
func NewKVStore(store kv.Store, collection string, opts ...KVStoreOption) (*KVStore, error) {
	if err := kv.ValidateKey(collection); err != nil {
		return nil, fmt.Errorf("invalid collection: %w", err)
	}
	s := &KVStore{
		kv:         store,
		collection: collection,
		prefix:     collection + ".",
		log:        slog.Default(),
		metrics:    NopESMetrics(),
		reads:      sf.New[storedDoc](),
	}
	for _, opt := range opts {
		opt.applyToKVStore(s)
	}
	s.log = s.log.With(slog.String("store", "kv"), slog.String("collection", collection))
	return s, nil
}

func (s *KVStore) key(id uuid.UUID) string { return s.prefix + id.String() }

func (s *KVStore) load(ctx context.Context, key string) (storedDoc, error) {
	defer s.metrics.StoreLoadDuration(s.collection).ObserveDuration()

	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return storedDoc{}, fmt.Errorf("%w: %s", ErrAggregateNotFound, key)
		}
		return storedDoc{}, err
	}
	var e StoredEntity
	if err := json.Unmarshal(entry.Data, &e); err != nil {
		return storedDoc{}, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return storedDoc{entity: e, revision: entry.Revision}, nil
}

// loadShared joins concurrent loads of the same key. The result is shared
// between callers and must be cloned before it is handed out. The shared load
// does not inherit cancellation, one caller giving up must not fail the
// others.
func (s *KVStore) loadShared(ctx context.Context, key string) (StoredEntity, error) {
	if err := ctx.Err(); err != nil {
		return StoredEntity{}, err
	}
	loadCtx := context.WithoutCancel(ctx)
	doc, _, err := s.reads.Do(key, func() (storedDoc, error) { return s.load(loadCtx, key) })
	if err != nil {
		return StoredEntity{}, err
	}
	return doc.entity.clone(), nil
}

func (s *KVStore) Get(ctx context.Context, id uuid.UUID) (*StoredEntity, error) {
	e, err := s.loadShared(ctx, s.key(id))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// All returns the entities ordered by id.
func (s *KVStore) All(ctx context.Context) ([]StoredEntity, error) {
	keys, err := s.kv.Keys(ctx, s.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.collection, err)
	}
	out := make([]StoredEntity, 0, len(keys))
	for _, key := range keys {
		e, err := s.loadShared(ctx, key)
		if errors.Is(err, ErrAggregateNotFound) {
			// deleted since listing
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *KVStore) FindFirst(ctx context.Context, property, value string) (*StoredEntity, error) {
	found, err := s.Find(ctx, property, value)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s=%s", ErrAggregateNotFound, property, value)
	}
	return &found[0], nil
}

func (s *KVStore) Find(ctx context.Context, property, value string) ([]StoredEntity, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, e := range all {
		if e.hasProperty(property, value) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *KVStore) Insert(ctx context.Context, entity StoredEntity) error {
	if err := validateEnvelopes(entity.EntityID, 0, entity.Events); err != nil {
		return err
	}
	defer s.metrics.StoreAppendDuration(s.collection).ObserveDuration()

	entity.CurrentVersion = Version(len(entity.Events))
	data, err := json.Marshal(entity)
	if err != nil {
		return err
	}
	key := s.key(entity.EntityID)
	if _, err := s.kv.Create(ctx, key, data); err != nil {
		if errors.Is(err, kv.ErrKeyExists) {
			return fmt.Errorf("%w: %s", ErrEntityExists, entity.EntityID)
		}
		return fmt.Errorf("failed to insert %s: %w", key, err)
	}
	s.log.Debug("insert", slog.String("key", key), entity.CurrentVersion.SlogAttr())
	return nil
}

func (s *KVStore) AppendEvents(ctx context.Context, id uuid.UUID, expected Version, events []Envelope, properties map[string]string) error {
	if err := validateEnvelopes(id, expected, events); err != nil {
		return err
	}
	return s.modify(ctx, id, func(e *StoredEntity) error {
		if e.CurrentVersion != expected {
			return fmt.Errorf("%w: %s is at version %d, expected %d", ErrConcurrencyConflict, id, e.CurrentVersion, expected)
		}
		e.Events = append(e.Events, events...)
		e.CurrentVersion += Version(len(events))
		if properties != nil {
			e.Properties = maps.Clone(properties)
		}
		return nil
	})
}

func (s *KVStore) UpdateProperties(ctx context.Context, id uuid.UUID, properties map[string]string) error {
	return s.modify(ctx, id, func(e *StoredEntity) error {
		e.Properties = maps.Clone(properties)
		return nil
	})
}

// modify runs a revision checked read-modify-write. Reads bypass the shared
// loads so the revision is never older than the caller.
func (s *KVStore) modify(ctx context.Context, id uuid.UUID, fn func(*StoredEntity) error) error {
	defer s.metrics.StoreAppendDuration(s.collection).ObserveDuration()

	key := s.key(id)
	doc, err := s.load(ctx, key)
	if err != nil {
		return err
	}
	if err := fn(&doc.entity); err != nil {
		return err
	}
	data, err := json.Marshal(doc.entity)
	if err != nil {
		return err
	}
	rev, err := s.kv.Update(ctx, key, data, doc.revision)
	if err != nil {
		if errors.Is(err, kv.ErrRevisionMismatch) {
			return fmt.Errorf("%w: %s was modified concurrently", ErrConcurrencyConflict, id)
		}
		return fmt.Errorf("failed to update %s: %w", key, err)
	}
	s.log.Debug(
		"update",
		slog.String("key", key),
		slog.Uint64("revision", rev),
		doc.entity.CurrentVersion.SlogAttr(),
	)
	return nil
}

// Collection returns the name the store was created for.
func (s *KVStore) Collection() string { return s.collection }

var _ EventStore = (*KVStore)(nil)
