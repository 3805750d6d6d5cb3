package es

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/folio-go/ports/kv"
)

// blockingGet holds Get until release is closed and records the context.
type blockingGet struct {
	kv.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
	seen    chan context.Context
}

func (b *blockingGet) Get(ctx context.Context, key string) (kv.Entry, error) {
	select {
	case b.seen <- ctx:
	default:
	}
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.Store.Get(ctx, key)
}

func TestKVStore_sharedLoadOutlivesCaller(t *testing.T) {
	mem := kv.NewMemStore()
	id := uuid.New()
	seed, err := NewKVStore(mem, "counter")
	require.NoError(t, err)
	require.NoError(t, seed.Insert(t.Context(), StoredEntity{EntityID: id, Type: "counter"}))

	b := &blockingGet{
		Store:   mem,
		entered: make(chan struct{}),
		release: make(chan struct{}),
		seen:    make(chan context.Context, 1),
	}
	s, err := NewKVStore(b, "counter")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	first := make(chan error, 1)
	go func() {
		_, err := s.Get(ctx, id)
		first <- err
	}()
	<-b.entered

	second := make(chan error, 1)
	go func() {
		_, err := s.Get(t.Context(), id)
		second <- err
	}()

	cancel()
	loadCtx := <-b.seen
	require.NoError(t, loadCtx.Err(), "the shared load is not cancelled with its first caller")
	close(b.release)

	require.NoError(t, <-first)
	require.NoError(t, <-second)

	_, err = s.Get(ctx, id)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewKVStore_rejectsCollectionOutsideKeyAlphabet(t *testing.T) {
	for _, c := range []string{"a/b", "../counter", "a..b", ""} {
		_, err := NewKVStore(kv.NewMemStore(), c)
		require.ErrorIs(t, err, kv.ErrInvalidKey, c)
	}
}
