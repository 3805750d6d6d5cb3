package sf

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGroup_Dedup(t *testing.T) {
	g := New[int]()

	var (
		calls   atomic.Int32
		start   = make(chan struct{})
		wg      sync.WaitGroup
		results = make([]int, 10)
	)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			v, _, err := g.Do("k", func() (int, error) {
				calls.Add(1)
				time.Sleep(20 * time.Millisecond)
				return 42, nil
			})
			if err != nil {
				t.Error(err)
			}
			results[i] = v
		}(i)
	}
	close(start)
	wg.Wait()

	require.Less(t, calls.Load(), int32(10))
	for _, v := range results {
		require.Equal(t, 42, v)
	}
}

func TestGroup_Error(t *testing.T) {
	g := New[string]()
	boom := errors.New("boom")
	v, _, err := g.Do("k", func() (string, error) { return "ignored", boom })
	require.ErrorIs(t, err, boom)
	require.Empty(t, v)

	v, shared, err := g.Do("k", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	require.False(t, shared)
	require.Equal(t, "ok", v)
}
