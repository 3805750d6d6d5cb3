// Package es rebuilds domain aggregates by replaying their event history.
//
// # Aggregates
//
// An aggregate embeds [TrackedEntity] and implements GetType and Apply. Apply
// mutates state for exactly one event and nothing else; [ApplyEvents] calls it
// and bumps the version, [ApplyAndPublish] additionally queues the event for
// persistence. Replay and live mutation therefore share one code path and the
// version always equals the number of events applied since construction.
//
//	func (c *Calendar) SetNonTradingDays(year int, days []NonTradingDay) error {
//	    return c.Checked(
//	        assert.Each(days, inYear(year)),
//	        es.ApplyAndPublishD(c, NonTradingDaysSet{BaseEvent: es.NewBaseEvent(c), Year: year, Days: days}),
//	    )
//	}
//
// Preconditions are checked with [TrackedEntity.Checked] before any event is
// built, so an invalid call never leaves a half applied aggregate behind.
//
// # Persistence
//
// Events are stored as [Envelope] values inside a [StoredEntity] document.
// The [EventRegistry] maps envelope types back to event values and is built
// explicitly at startup:
//
//	reg := es.NewEventRegistry()
//	calendar.RegisterEvents(reg)
//
// [Repository] ties an [EventStore], the registry and a [Factory] together.
// Get replays, Add and Update persist pending events. Update uses the version
// the aggregate was loaded at as the expected store version and fails with
// [ErrConcurrencyConflict] if someone else appended in between.
//
//	repo := es.NewRepository(store, reg, calendar.Factory())
//	err := repo.WithTransaction(ctx, id, func(c *calendar.Calendar) error {
//	    return c.SetNonTradingDays(2019, days)
//	}, es.WithCreate())
//
// [InMemoryStore] serves tests and tooling, [KVStore] persists into any
// kv.Store (memory, folder of JSON files, NATS JetStream key/value).
package es
