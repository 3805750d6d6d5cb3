package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/folio-go/core/date"
	"github.com/codewandler/folio-go/core/effective"
	"github.com/codewandler/folio-go/core/es"
)

var (
	joined = date.MustParse("2018-03-01")
	moved  = date.MustParse("2021-07-15")
)

func alice(t *testing.T) *User {
	t.Helper()
	u := New(uuid.New())
	require.NoError(t, u.Create(joined, "alice", "Alice Smith", "alice@example.com"))
	return u
}

func TestUser_Create(t *testing.T) {
	u := alice(t)
	require.Equal(t, "alice", u.UserName())
	require.Equal(t, map[string]string{PropertyUserName: "alice"}, u.StoredProperties())

	d, err := u.Details(joined)
	require.NoError(t, err)
	require.Equal(t, Details{Name: "Alice Smith", Email: "alice@example.com"}, d)

	_, err = u.Details(joined.AddDays(-1))
	require.ErrorIs(t, err, effective.ErrNotFound)

	require.ErrorIs(t, u.Create(joined, "alice", "Alice", "a@example.com"), es.ErrInvalidArgument)
}

func TestUser_Create_invalid(t *testing.T) {
	cases := map[string][3]string{
		"user name":          {"A", "Alice", "alice@example.com"},
		"name":               {"alice", "", "alice@example.com"},
		"email":              {"alice", "Alice", "not an address"},
		"display name email": {"alice", "Alice", "Craig Booth <craig@example.com>"},
		"empty email":        {"alice", "Alice", ""},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			u := New(uuid.New())
			require.ErrorIs(t, u.Create(joined, c[0], c[1], c[2]), es.ErrInvalidArgument)
			require.Equal(t, 0, u.PendingEvents())
			require.Nil(t, u.StoredProperties())
		})
	}
}

func TestUser_ChangeDetails(t *testing.T) {
	u := alice(t)
	require.NoError(t, u.ChangeDetails(moved, "Alice Jones", "alice@jones.example"))

	d, err := u.Details(moved.AddDays(-1))
	require.NoError(t, err)
	require.Equal(t, "Alice Smith", d.Name)

	cur, ok := u.CurrentDetails()
	require.True(t, ok)
	require.Equal(t, "alice@jones.example", cur.Email)

	require.ErrorIs(t, u.ChangeDetails(joined, "Alice", "alice@example.com"), es.ErrInvalidArgument)
	require.ErrorIs(t, u.ChangeDetails(moved.AddDays(1), "Alice", "Alice <alice@example.com>"), es.ErrInvalidArgument)
	require.ErrorIs(t, New(uuid.New()).ChangeDetails(moved, "Bob", "bob@example.com"), es.ErrInvalidArgument)
}

func TestUser_repository(t *testing.T) {
	ctx := context.Background()
	reg := es.NewEventRegistry()
	RegisterEvents(reg)
	repo := es.NewRepository(es.NewInMemoryStore(), reg, Factory())

	u := alice(t)
	require.NoError(t, u.ChangeDetails(moved, "Alice Jones", "alice@jones.example"))
	require.NoError(t, repo.Add(ctx, u))

	found, err := repo.FindFirst(ctx, PropertyUserName, "alice")
	require.NoError(t, err)
	require.Equal(t, u.GetID(), found.GetID())
	require.Equal(t, es.Version(2), found.GetVersion())

	d, err := found.Details(moved)
	require.NoError(t, err)
	require.Equal(t, "Alice Jones", d.Name)
}
