package es

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/codewandler/folio-go/core/cache"
	"github.com/codewandler/folio-go/core/perkey"
)

// PropertySource is implemented by aggregates exposing searchable key/value
// properties next to their events, e.g. a stock's ASX code. They are what
// FindFirst and Find match on.
type PropertySource interface {
	StoredProperties() map[string]string
}

// Repository rebuilds aggregates of one type from an EventStore and persists
// their pending events.
type Repository[T Aggregate] struct {
	name     string
	log      *slog.Logger
	store    EventStore
	registry *EventRegistry
	factory  *Factory[T]
	metrics  ESMetrics
	cache    cache.Cache[uuid.UUID, T]
	locks    *perkey.Locker[uuid.UUID]
	newID    IDGenerator
	now      func() time.Time
}

func NewRepository[T Aggregate](
	store EventStore,
	registry *EventRegistry,
	factory *Factory[T],
	opts ...RepositoryOption,
) *Repository[T] {
	options := newRepoOpts(opts...)

	var c cache.Cache[uuid.UUID, T] = cache.NewNop[uuid.UUID, T]()
	if options.cacheSize > 0 {
		c = cache.NewLRU[uuid.UUID, T](cache.LRUOpts{Size: options.cacheSize, DefaultTTL: options.cacheTTL})
	}

	name := factory.DefaultType()
	return &Repository[T]{
		name:     name,
		log:      options.log.With(slog.String("repo", name)),
		store:    store,
		registry: registry,
		factory:  factory,
		metrics:  options.metrics,
		cache:    c,
		locks:    perkey.New[uuid.UUID](),
		newID:    options.idGenerator,
		now:      options.clock,
	}
}

// Get rebuilds the aggregate by replaying its stored events. The returned
// aggregate's version equals the number of stored events.
func (r *Repository[T]) Get(ctx context.Context, id uuid.UUID) (agg T, err error) {
	defer r.metrics.RepoLoadDuration(r.name).ObserveDuration()

	stored, err := r.store.Get(ctx, id)
	if err != nil {
		return agg, err
	}
	return r.rebuild(*stored)
}

// All rebuilds every stored aggregate, in store order.
func (r *Repository[T]) All(ctx context.Context) ([]T, error) {
	stored, err := r.store.All(ctx)
	if err != nil {
		return nil, err
	}
	return r.rebuildAll(stored)
}

// FindFirst rebuilds the first aggregate whose stored property matches.
func (r *Repository[T]) FindFirst(ctx context.Context, property, value string) (agg T, err error) {
	stored, err := r.store.FindFirst(ctx, property, value)
	if err != nil {
		return agg, err
	}
	return r.rebuild(*stored)
}

func (r *Repository[T]) Find(ctx context.Context, property, value string) ([]T, error) {
	stored, err := r.store.Find(ctx, property, value)
	if err != nil {
		return nil, err
	}
	return r.rebuildAll(stored)
}

func (r *Repository[T]) rebuildAll(stored []StoredEntity) ([]T, error) {
	out := make([]T, 0, len(stored))
	for _, s := range stored {
		agg, err := r.rebuild(s)
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, nil
}

func (r *Repository[T]) rebuild(stored StoredEntity) (agg T, err error) {
	agg, err = r.factory.Create(stored.EntityID, stored.Type)
	if err != nil {
		return agg, err
	}

	events := make([]Event, 0, len(stored.Events))
	for _, env := range stored.Events {
		ev, err := r.registry.Decode(env)
		if err != nil {
			return agg, fmt.Errorf("failed to replay %s %s: %w", stored.Type, stored.EntityID, err)
		}
		events = append(events, ev)
	}
	if err := ApplyEvents(agg, events...); err != nil {
		return agg, err
	}
	r.metrics.EventsReplayed(r.name, len(events))

	r.log.Debug(
		"loaded",
		slog.Group(
			"agg",
			slog.String("type", stored.Type),
			slog.String("id", stored.EntityID.String()),
			agg.GetVersion().SlogAttr(),
		),
	)
	return agg, nil
}

// Add stores a new aggregate together with its pending events. An id that
// is already taken fails with ErrEntityExists and the events stay pending.
func (r *Repository[T]) Add(ctx context.Context, agg T) error {
	defer r.metrics.RepoSaveDuration(r.name).ObserveDuration()

	if agg.GetID() == uuid.Nil {
		return fmt.Errorf("%w: aggregate id is empty", ErrInvalidArgument)
	}
	pending := agg.FetchEvents()
	if base := agg.GetVersion() - Version(len(pending)); base != 0 {
		republish(agg, pending)
		return fmt.Errorf("%w: %s %s was loaded at version %d, use Update", ErrInvalidArgument, agg.GetType(), agg.GetID(), base)
	}

	envs, err := r.encode(agg.GetID(), 0, pending)
	if err != nil {
		republish(agg, pending)
		return err
	}

	if err := r.store.Insert(ctx, StoredEntity{
		EntityID:   agg.GetID(),
		Type:       agg.GetType(),
		Properties: propertiesOf(agg),
		Events:     envs,
	}); err != nil {
		republish(agg, pending)
		return fmt.Errorf("failed to add %s %s: %w", agg.GetType(), agg.GetID(), err)
	}

	r.metrics.EventsAppended(r.name, len(envs))
	r.logSaved("added", agg, len(envs))
	return nil
}

// Update appends the pending events of agg and replaces its stored
// properties in one write. The store must still be at the version agg was
// loaded at, otherwise ErrConcurrencyConflict is returned and the events stay
// pending.
func (r *Repository[T]) Update(ctx context.Context, agg T) error {
	pending := agg.FetchEvents()
	if len(pending) == 0 {
		return nil
	}
	defer r.metrics.RepoSaveDuration(r.name).ObserveDuration()

	expected := agg.GetVersion() - Version(len(pending))
	envs, err := r.encode(agg.GetID(), expected, pending)
	if err != nil {
		republish(agg, pending)
		return err
	}

	if err := r.store.AppendEvents(ctx, agg.GetID(), expected, envs, propertiesOf(agg)); err != nil {
		republish(agg, pending)
		if errors.Is(err, ErrConcurrencyConflict) {
			r.metrics.ConcurrencyConflict(r.name)
		}
		return fmt.Errorf("failed to update %s %s: %w", agg.GetType(), agg.GetID(), err)
	}
	r.metrics.EventsAppended(r.name, len(envs))
	r.logSaved("updated", agg, len(envs))
	return nil
}

// AppendEvents appends already built events to a stored aggregate without
// replaying it. Stored history is never rewritten.
func (r *Repository[T]) AppendEvents(ctx context.Context, id uuid.UUID, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	defer r.metrics.RepoSaveDuration(r.name).ObserveDuration()

	stored, err := r.store.Get(ctx, id)
	if err != nil {
		return err
	}
	envs, err := r.encode(id, stored.CurrentVersion, events)
	if err != nil {
		return err
	}
	if err := r.store.AppendEvents(ctx, id, stored.CurrentVersion, envs, nil); err != nil {
		if errors.Is(err, ErrConcurrencyConflict) {
			r.metrics.ConcurrencyConflict(r.name)
		}
		return err
	}
	r.metrics.EventsAppended(r.name, len(envs))
	r.cache.Delete(id)
	return nil
}

// WithTransaction serializes load, fn and save per aggregate id. If fn or the
// save fails, nothing is persisted and the cached instance is dropped.
func (r *Repository[T]) WithTransaction(
	ctx context.Context,
	id uuid.UUID,
	fn func(agg T) error,
	opts ...WithTransactionOption,
) error {
	options := newWithTransactionOptions(opts...)

	return r.locks.Do(ctx, id, func() error {
		agg, isNew, err := r.loadForTransaction(ctx, id, options)
		if err != nil {
			return err
		}

		if err := fn(agg); err != nil {
			r.cache.Delete(id)
			return err
		}

		if isNew {
			err = r.Add(ctx, agg)
		} else {
			err = r.Update(ctx, agg)
		}
		if err != nil {
			r.cache.Delete(id)
			return err
		}

		if options.useCache {
			r.cache.Put(id, agg)
		}
		return nil
	})
}

func (r *Repository[T]) loadForTransaction(ctx context.Context, id uuid.UUID, options repoWithTransactionOpts) (agg T, isNew bool, err error) {
	if options.useCache {
		if cached, ok := r.cache.Get(id); ok {
			r.metrics.CacheHit(r.name)
			return cached, false, nil
		}
		r.metrics.CacheMiss(r.name)
	}

	agg, err = r.Get(ctx, id)
	if err == nil {
		return agg, false, nil
	}
	if !errors.Is(err, ErrAggregateNotFound) || !options.create {
		return agg, false, err
	}

	agg, err = r.factory.Create(id, r.factory.DefaultType())
	return agg, true, err
}

func (r *Repository[T]) encode(id uuid.UUID, from Version, events []Event) ([]Envelope, error) {
	now := r.now()
	envs := make([]Envelope, 0, len(events))
	for i, ev := range events {
		if ev.GetEntityID() != id {
			return nil, fmt.Errorf("%w: event %T belongs to %s, not %s", ErrInvalidArgument, ev, ev.GetEntityID(), id)
		}
		env, err := r.registry.Encode(ev, r.newID(), now)
		if err != nil {
			return nil, err
		}
		// the stream position is authoritative
		env.Version = from + Version(i)
		envs = append(envs, env)
	}
	return envs, nil
}

func (r *Repository[T]) logSaved(msg string, agg T, numEvents int) {
	r.log.Debug(
		msg,
		slog.Group(
			"agg",
			slog.String("type", agg.GetType()),
			slog.String("id", agg.GetID().String()),
			agg.GetVersion().SlogAttr(),
		),
		slog.Int("num_events", numEvents),
	)
}

func propertiesOf(agg Aggregate) map[string]string {
	if ps, ok := agg.(PropertySource); ok {
		return ps.StoredProperties()
	}
	return nil
}

// republish puts events that could not be persisted back into the pending
// list so the caller can retry.
func republish(agg Aggregate, events []Event) {
	for _, ev := range events {
		agg.publish(ev)
	}
}
