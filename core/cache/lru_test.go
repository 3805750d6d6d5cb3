package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLRU_Basic(t *testing.T) {
	l := NewLRU[string, int](LRUOpts{Size: 2})

	l.Put("a", 1)
	l.Put("b", 2)

	val, ok := l.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, val)

	l.Put("c", 3) // evicts b

	_, ok = l.Get("b")
	require.False(t, ok)

	val, ok = l.Get("c")
	require.True(t, ok)
	require.Equal(t, 3, val)
	require.Equal(t, 2, l.Len())
}

func TestLRU_Update(t *testing.T) {
	l := NewLRU[string, int](LRUOpts{Size: 2})
	l.Put("a", 1)
	l.Put("a", 2)

	val, ok := l.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, val)
	require.Equal(t, 1, l.Len())
}

func TestLRU_Promotion(t *testing.T) {
	l := NewLRU[string, int](LRUOpts{Size: 2})
	l.Put("a", 1)
	l.Put("b", 2)
	l.Get("a")
	l.Put("c", 3)

	_, ok := l.Get("b")
	require.False(t, ok)
	_, ok = l.Get("a")
	require.True(t, ok)
}

func TestLRU_Delete(t *testing.T) {
	l := NewLRU[string, int](LRUOpts{Size: 2})
	l.Put("a", 1)
	l.Delete("a")
	l.Delete("missing")

	_, ok := l.Get("a")
	require.False(t, ok)
	require.Equal(t, 0, l.Len())
}

func TestLRU_TTL(t *testing.T) {
	now := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLRU[string, int](LRUOpts{Size: 4, DefaultTTL: time.Minute})
	l.now = func() time.Time { return now }

	l.Put("default", 1)
	l.Put("short", 2, WithTTL(time.Second))
	l.Put("forever", 3, WithTTL(0))

	now = now.Add(2 * time.Second)
	_, ok := l.Get("short")
	require.False(t, ok)
	_, ok = l.Get("default")
	require.True(t, ok)

	now = now.Add(time.Hour)
	_, ok = l.Get("default")
	require.False(t, ok)
	_, ok = l.Get("forever")
	require.True(t, ok)
	require.Equal(t, 1, l.Len())
}

func TestLRU_Concurrent(t *testing.T) {
	l := NewLRU[int, int](LRUOpts{Size: 16})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Put(j, i)
				l.Get(j)
				if j%7 == 0 {
					l.Delete(j)
				}
			}
		}(i)
	}
	wg.Wait()
	require.LessOrEqual(t, l.Len(), 16)
}

func TestNop(t *testing.T) {
	var c Cache[string, int] = NewNop[string, int]()
	c.Put("a", 1)
	_, ok := c.Get("a")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}
