package kv

import (
	"context"
	"slices"
	"strings"
	"sync"
)

type MemStore struct {
	mu       sync.RWMutex
	revision uint64
	data     map[string]Entry
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string]Entry{}}
}

func (m *MemStore) write(key string, data []byte) uint64 {
	m.revision++
	m.data[key] = Entry{Data: slices.Clone(data), Revision: m.revision}
	return m.revision
}

func (m *MemStore) Put(_ context.Context, key string, data []byte) (uint64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(key, data), nil
}

func (m *MemStore) Create(_ context.Context, key string, data []byte) (uint64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return 0, ErrKeyExists
	}
	return m.write(key, data), nil
}

func (m *MemStore) Update(_ context.Context, key string, data []byte, revision uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.data[key]
	if !ok {
		return 0, ErrNotFound
	}
	if cur.Revision != revision {
		return 0, ErrRevisionMismatch
	}
	return m.write(key, data), nil
}

func (m *MemStore) Get(_ context.Context, key string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.data[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	entry.Data = slices.Clone(entry.Data)
	return entry, nil
}

func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemStore) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

var _ Store = (*MemStore)(nil)
