package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/folio-go/adapters/nats"
	"github.com/codewandler/folio-go/core/date"
	"github.com/codewandler/folio-go/core/es"
	"github.com/codewandler/folio-go/domain/calendar"
	"github.com/codewandler/folio-go/domain/stock"
	"github.com/codewandler/folio-go/domain/user"
	"github.com/codewandler/folio-go/ports/kv"
)

// node is one process worth of repositories on a shared bucket.
type node struct {
	calendars *es.Repository[*calendar.Calendar]
	stocks    *es.Repository[*stock.Stock]
	users     *es.Repository[*user.User]
}

func newNode(t *testing.T, bucket kv.Store, opts ...es.RepositoryOption) *node {
	t.Helper()
	events := es.NewEventRegistry()
	calendar.RegisterEvents(events)
	stock.RegisterEvents(events)
	user.RegisterEvents(events)

	store := func(collection string) es.EventStore {
		s, err := es.NewKVStore(bucket, collection)
		require.NoError(t, err)
		return s
	}
	return &node{
		calendars: es.NewRepository(store("calendars"), events, calendar.Factory(), opts...),
		stocks:    es.NewRepository(store("stocks"), events, stock.Factory(), opts...),
		users:     es.NewRepository(store("users"), events, user.Factory(), opts...),
	}
}

func newBucket(t *testing.T) *nats.KvStore {
	s, err := nats.NewKvStore(t.Context(), nats.KvConfig{
		Bucket:  "folio",
		Connect: nats.ReuseConnection(nats.NewTestContainer(t)),
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func days(dates ...string) []calendar.NonTradingDay {
	out := make([]calendar.NonTradingDay, len(dates))
	for i, d := range dates {
		out[i] = calendar.NonTradingDay{Date: date.MustParse(d)}
	}
	return out
}

func TestIntegration(t *testing.T) {
	ctx := t.Context()
	bucket := newBucket(t)

	a := newNode(t, bucket, es.WithRepoCacheLRU(16, 0))
	b := newNode(t, bucket)

	calID := uuid.New()
	require.NoError(t, a.calendars.WithTransaction(ctx, calID, func(c *calendar.Calendar) error {
		return c.SetNonTradingDays(2019, days("2019-01-01", "2019-12-25"))
	}, es.WithCreate()))

	bhp := stock.New(uuid.New())
	require.NoError(t, bhp.List(date.MustParse("2001-06-29"), stock.Properties{ASXCode: "BHP", Name: "BHP Billiton Limited", Category: stock.Shares}))
	require.NoError(t, a.stocks.Add(ctx, bhp))

	alice := user.New(uuid.New())
	require.NoError(t, alice.Create(date.MustParse("2018-03-01"), "alice", "Alice Smith", "alice@example.com"))
	require.NoError(t, a.users.Add(ctx, alice))

	// the other node sees everything
	cal, err := b.calendars.Get(ctx, calID)
	require.NoError(t, err)
	require.False(t, cal.IsTradingDay(date.MustParse("2019-12-25")))

	s, err := b.stocks.FindFirst(ctx, stock.PropertyASXCode, "BHP")
	require.NoError(t, err)
	require.Equal(t, bhp.GetID(), s.GetID())

	u, err := b.users.FindFirst(ctx, user.PropertyUserName, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.GetID(), u.GetID())

	// collections do not leak into each other
	all, err := b.calendars.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestIntegration_concurrencyConflict(t *testing.T) {
	ctx := t.Context()
	bucket := newBucket(t)
	a := newNode(t, bucket)
	b := newNode(t, bucket)

	id := uuid.New()
	require.NoError(t, a.calendars.WithTransaction(ctx, id, func(c *calendar.Calendar) error {
		return c.SetNonTradingDays(2019, days("2019-01-01"))
	}, es.WithCreate()))

	onA, err := a.calendars.Get(ctx, id)
	require.NoError(t, err)
	onB, err := b.calendars.Get(ctx, id)
	require.NoError(t, err)

	require.NoError(t, onA.SetNonTradingDays(2020, days("2020-01-01")))
	require.NoError(t, a.calendars.Update(ctx, onA))

	require.NoError(t, onB.SetNonTradingDays(2021, days("2021-01-01")))
	require.ErrorIs(t, b.calendars.Update(ctx, onB), es.ErrConcurrencyConflict)

	cal, err := b.calendars.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, es.Version(2), cal.GetVersion())
	require.Equal(t, []int{2019, 2020}, cal.Years())
}

func TestIntegration_transactions(t *testing.T) {
	ctx := t.Context()
	n := newNode(t, newBucket(t), es.WithRepoCacheLRU(16, 0))
	id := uuid.New()

	var wg sync.WaitGroup
	for year := 2000; year < 2010; year++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := n.calendars.WithTransaction(ctx, id, func(c *calendar.Calendar) error {
				return c.SetNonTradingDays(year, days(date.New(year, 1, 1).String()))
			}, es.WithCreate())
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	cal, err := n.calendars.Get(context.WithoutCancel(ctx), id)
	require.NoError(t, err)
	require.Equal(t, es.Version(10), cal.GetVersion())
	require.Len(t, cal.Years(), 10)
}
