// Package ds provides small generic data structures.
package ds

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// Set is an insertion ordered set with O(1) membership tests. Iteration order
// is deterministic, which stores and CLI output rely on.
type Set[T comparable] struct {
	items map[T]struct{}
	order []T
}

func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{items: make(map[T]struct{}, len(items)), order: make([]T, 0, len(items))}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func (s *Set[T]) String() string { return fmt.Sprintf("%v", s.order) }

// Add appends v unless it is already present. It reports whether v was added.
func (s *Set[T]) Add(v T) bool {
	if s.items == nil {
		s.items = map[T]struct{}{}
	}
	if _, ok := s.items[v]; ok {
		return false
	}
	s.items[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

// Remove deletes the given values. O(n) in the set size.
func (s *Set[T]) Remove(vs ...T) {
	removed := false
	for _, v := range vs {
		if _, ok := s.items[v]; ok {
			delete(s.items, v)
			removed = true
		}
	}
	if removed {
		s.order = slices.DeleteFunc(s.order, func(v T) bool {
			_, keep := s.items[v]
			return !keep
		})
	}
}

func (s *Set[T]) Contains(v T) bool {
	_, ok := s.items[v]
	return ok
}

func (s *Set[T]) Len() int      { return len(s.order) }
func (s *Set[T]) IsEmpty() bool { return len(s.order) == 0 }

// Values returns a copy of the elements in insertion order.
func (s *Set[T]) Values() []T { return slices.Clone(s.order) }

// All iterates in insertion order. The set must not be modified meanwhile.
func (s *Set[T]) All() iter.Seq[T] { return slices.Values(s.order) }

// Diff returns what has to be added to and removed from s to obtain other.
// add follows the order of other, remove the order of s.
func (s *Set[T]) Diff(other *Set[T]) (add, remove *Set[T]) {
	add, remove = NewSet[T](), NewSet[T]()
	for _, v := range other.order {
		if !s.Contains(v) {
			add.Add(v)
		}
	}
	for _, v := range s.order {
		if !other.Contains(v) {
			remove.Add(v)
		}
	}
	return add, remove
}

func (s Set[T]) MarshalJSON() ([]byte, error) {
	if s.order == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.order)
}

func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var vs []T
	if err := json.Unmarshal(data, &vs); err != nil {
		return err
	}
	*s = *NewSet(vs...)
	return nil
}
