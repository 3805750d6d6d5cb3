package cache

import (
	"container/list"
	"sync"
	"time"
)

type LRUOpts struct {
	Size int
	// DefaultTTL applies to entries put without WithTTL.
	DefaultTTL time.Duration
}

type entry[K comparable, V any] struct {
	key       K
	val       V
	expiresAt time.Time
}

func (e *entry[K, V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// LRU is a size bounded cache evicting the least recently used entry.
// It is safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu    sync.Mutex
	size  int
	ttl   time.Duration
	ll    *list.List
	items map[K]*list.Element
	now   func() time.Time
}

func NewLRU[K comparable, V any](opts LRUOpts) *LRU[K, V] {
	if opts.Size <= 0 {
		opts.Size = 128
	}
	return &LRU[K, V]{
		size:  opts.Size,
		ttl:   opts.DefaultTTL,
		ll:    list.New(),
		items: make(map[K]*list.Element),
		now:   time.Now,
	}
}

func (l *LRU[K, V]) Get(key K) (v V, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ele, ok := l.items[key]
	if !ok {
		return v, false
	}
	e := ele.Value.(*entry[K, V])
	if e.expired(l.now()) {
		l.removeElement(ele)
		return v, false
	}
	l.ll.MoveToFront(ele)
	return e.val, true
}

func (l *LRU[K, V]) Put(key K, val V, opts ...PutOption) {
	o := PutOptions{TTL: l.ttl}
	for _, opt := range opts {
		opt(&o)
	}
	var expiresAt time.Time
	if o.TTL > 0 {
		expiresAt = l.now().Add(o.TTL)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if ele, ok := l.items[key]; ok {
		e := ele.Value.(*entry[K, V])
		e.val = val
		e.expiresAt = expiresAt
		l.ll.MoveToFront(ele)
		return
	}

	l.items[key] = l.ll.PushFront(&entry[K, V]{key: key, val: val, expiresAt: expiresAt})
	if l.ll.Len() > l.size {
		if last := l.ll.Back(); last != nil {
			l.removeElement(last)
		}
	}
}

func (l *LRU[K, V]) Delete(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ele, ok := l.items[key]; ok {
		l.removeElement(ele)
	}
}

func (l *LRU[K, V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ll.Len()
}

func (l *LRU[K, V]) removeElement(ele *list.Element) {
	l.ll.Remove(ele)
	delete(l.items, ele.Value.(*entry[K, V]).key)
}

var _ Cache[string, any] = (*LRU[string, any])(nil)
