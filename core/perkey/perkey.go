// Package perkey serializes work per key while work for different keys runs
// concurrently.
//
// The repository uses it to keep a single writer per aggregate id: two
// transactions on the same calendar never interleave their load and save.
package perkey

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Do once the locker has been closed.
var ErrClosed = errors.New("perkey: locker is closed")

type slot struct {
	sem  chan struct{}
	refs int
}

// Locker hands out one exclusive slot per key. The zero value is not usable,
// create it with New.
type Locker[K comparable] struct {
	mu     sync.Mutex
	slots  map[K]*slot
	closed bool
}

func New[K comparable]() *Locker[K] {
	return &Locker[K]{slots: make(map[K]*slot)}
}

// Do runs fn while holding the slot for key. Callers for the same key run one
// after another, roughly in arrival order. If ctx ends while waiting, fn is
// not run and the context error is returned.
func (l *Locker[K]) Do(ctx context.Context, key K, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s, err := l.acquireRef(key)
	if err != nil {
		return err
	}
	defer l.releaseRef(key, s)

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.sem }()

	return fn()
}

// Len returns the number of keys with a running or waiting caller.
func (l *Locker[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

// Close rejects new callers. Callers already inside Do finish normally.
func (l *Locker[K]) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

func (l *Locker[K]) acquireRef(key K) (*slot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	s, ok := l.slots[key]
	if !ok {
		s = &slot{sem: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s, nil
}

func (l *Locker[K]) releaseRef(key K, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
