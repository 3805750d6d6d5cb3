package sf

import "golang.org/x/sync/singleflight"

// Group deduplicates concurrent calls with the same key. Only the first
// caller executes fn, the others wait and receive the same result.
type Group[T any] struct {
	group singleflight.Group
}

// Do executes fn for key unless a call for key is already in flight, in which
// case it waits for that call. shared reports whether the result was handed
// to more than one caller; shared values must be treated as read-only.
func (g *Group[T]) Do(key string, fn func() (T, error)) (v T, shared bool, err error) {
	res, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		return v, shared, err
	}
	return res.(T), shared, nil
}

// Forget drops key so the next Do starts a fresh call.
func (g *Group[T]) Forget(key string) { g.group.Forget(key) }

func New[T any]() *Group[T] {
	return &Group[T]{}
}
