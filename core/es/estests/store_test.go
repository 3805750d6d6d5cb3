package estests

import (
	"testing"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/folio-go/core/es"
	"github.com/codewandler/folio-go/ports/kv"
)

type storeCase struct {
	name  string
	store func(t *testing.T) es.EventStore
}

func storeCases() []storeCase {
	return []storeCase{
		{
			name:  "memory",
			store: func(*testing.T) es.EventStore { return es.NewInMemoryStore() },
		},
		{
			name: "kv memory",
			store: func(t *testing.T) es.EventStore {
				s, err := es.NewKVStore(kv.NewMemStore(), "counter")
				require.NoError(t, err)
				return s
			},
		},
		{
			name: "kv file",
			store: func(t *testing.T) es.EventStore {
				f, err := kv.NewFileStore(t.TempDir())
				require.NoError(t, err)
				s, err := es.NewKVStore(f, "counter")
				require.NoError(t, err)
				return s
			},
		},
	}
}

func envelopes(id uuid.UUID, from es.Version, n int) []es.Envelope {
	out := make([]es.Envelope, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, es.Envelope{
			ID:         gonanoid.Must(),
			Type:       "counter.incremented",
			EntityID:   id,
			Version:    from + es.Version(i),
			OccurredAt: time.Now().UTC().Truncate(time.Millisecond),
			Data:       []byte(`{"by":1}`),
		})
	}
	return out
}

func TestStore_Contract(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := t.Context()
			s := tc.store(t)
			id := uuid.New()

			_, err := s.Get(ctx, id)
			require.ErrorIs(t, err, es.ErrAggregateNotFound)

			require.NoError(t, s.Insert(ctx, es.StoredEntity{
				EntityID:   id,
				Type:       "counter",
				Properties: map[string]string{"label": "a"},
				Events:     envelopes(id, 0, 2),
			}))

			require.ErrorIs(t, s.Insert(ctx, es.StoredEntity{EntityID: id, Type: "counter"}), es.ErrEntityExists)

			got, err := s.Get(ctx, id)
			require.NoError(t, err)
			require.Equal(t, es.Version(2), got.CurrentVersion)
			require.Len(t, got.Events, 2)
			require.Equal(t, "counter", got.Type)

			t.Run("append", func(t *testing.T) {
				err := s.AppendEvents(ctx, id, 1, envelopes(id, 1, 1), nil)
				require.ErrorIs(t, err, es.ErrConcurrencyConflict)

				require.NoError(t, s.AppendEvents(ctx, id, 2, envelopes(id, 2, 3), nil))
				got, err := s.Get(ctx, id)
				require.NoError(t, err)
				require.Equal(t, es.Version(5), got.CurrentVersion)
				require.Equal(t, "a", got.Properties["label"], "nil properties are kept")
				for i, e := range got.Events {
					require.Equal(t, es.Version(i), e.Version)
				}

				require.ErrorIs(t, s.AppendEvents(ctx, uuid.New(), 0, nil, nil), es.ErrAggregateNotFound)
			})

			t.Run("reject foreign events", func(t *testing.T) {
				err := s.AppendEvents(ctx, id, 5, envelopes(uuid.New(), 5, 1), nil)
				require.ErrorIs(t, err, es.ErrInvalidArgument)

				err = s.AppendEvents(ctx, id, 5, envelopes(id, 7, 1), nil)
				require.ErrorIs(t, err, es.ErrInvalidArgument)
			})

			t.Run("copies", func(t *testing.T) {
				got, err := s.Get(ctx, id)
				require.NoError(t, err)
				got.Events[0].Type = "tampered"
				got.Properties["label"] = "tampered"

				again, err := s.Get(ctx, id)
				require.NoError(t, err)
				require.Equal(t, "counter.incremented", again.Events[0].Type)
				require.Equal(t, "a", again.Properties["label"])
			})

			t.Run("find", func(t *testing.T) {
				other := uuid.New()
				require.NoError(t, s.Insert(ctx, es.StoredEntity{EntityID: other, Type: "counter"}))
				require.NoError(t, s.UpdateProperties(ctx, other, map[string]string{"label": "b"}))

				all, err := s.All(ctx)
				require.NoError(t, err)
				require.Len(t, all, 2)

				first, err := s.FindFirst(ctx, "label", "b")
				require.NoError(t, err)
				require.Equal(t, other, first.EntityID)

				found, err := s.Find(ctx, "label", "a")
				require.NoError(t, err)
				require.Len(t, found, 1)
				require.Equal(t, id, found[0].EntityID)

				_, err = s.FindFirst(ctx, "label", "c")
				require.ErrorIs(t, err, es.ErrAggregateNotFound)

				found, err = s.Find(ctx, "label", "c")
				require.NoError(t, err)
				require.Empty(t, found)

				require.ErrorIs(t, s.UpdateProperties(ctx, uuid.New(), nil), es.ErrAggregateNotFound)
			})
		})
	}
}

func TestStore_AppendEventsReplacesProperties(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := t.Context()
			s := tc.store(t)
			id := uuid.New()
			require.NoError(t, s.Insert(ctx, es.StoredEntity{
				EntityID:   id,
				Type:       "counter",
				Properties: map[string]string{"label": "a"},
				Events:     envelopes(id, 0, 1),
			}))

			// a rejected append leaves the properties untouched
			err := s.AppendEvents(ctx, id, 0, envelopes(id, 0, 1), map[string]string{"label": "x"})
			require.ErrorIs(t, err, es.ErrConcurrencyConflict)

			require.NoError(t, s.AppendEvents(ctx, id, 1, envelopes(id, 1, 1), map[string]string{"label": "b"}))

			got, err := s.Get(ctx, id)
			require.NoError(t, err)
			require.Equal(t, es.Version(2), got.CurrentVersion)
			require.Equal(t, map[string]string{"label": "b"}, got.Properties)

			_, err = s.FindFirst(ctx, "label", "x")
			require.ErrorIs(t, err, es.ErrAggregateNotFound)
		})
	}
}

func TestInMemoryStore_InsertionOrder(t *testing.T) {
	s := es.NewInMemoryStore()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		require.NoError(t, s.Insert(t.Context(), es.StoredEntity{EntityID: id, Type: "counter"}))
	}
	all, err := s.All(t.Context())
	require.NoError(t, err)
	for i, e := range all {
		require.Equal(t, ids[i], e.EntityID)
	}
}
