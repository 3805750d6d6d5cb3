// Package kv is the key/value port the document stores are built on.
//
// Every entry carries a revision that grows with each write. Create and Update
// use it for optimistic concurrency, the same way NATS JetStream key/value
// buckets do.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrKeyExists        = errors.New("key exists")
	ErrRevisionMismatch = errors.New("revision mismatch")
	ErrInvalidKey       = errors.New("invalid key")
)

type Entry struct {
	Data     []byte
	Revision uint64
}

type Store interface {
	// Put writes unconditionally and returns the new revision.
	Put(ctx context.Context, key string, data []byte) (uint64, error)
	// Create writes only if key does not exist, ErrKeyExists otherwise.
	Create(ctx context.Context, key string, data []byte) (uint64, error)
	// Update writes only if the current revision of key equals revision,
	// ErrRevisionMismatch otherwise.
	Update(ctx context.Context, key string, data []byte, revision uint64) (uint64, error)
	Get(ctx context.Context, key string) (Entry, error)
	Delete(ctx context.Context, key string) error
	// Keys lists the keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

var validKey = regexp.MustCompile(`^[-_=.a-zA-Z0-9]+$`)

// ValidateKey accepts the key alphabet shared by all backends. Tokens are
// separated by single dots and a key never contains a path separator, so it
// is also a safe file name.
func ValidateKey(key string) error {
	if !validKey.MatchString(key) || key[0] == '.' || key[len(key)-1] == '.' || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func Put[T any](ctx context.Context, store Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = store.Put(ctx, key, data)
	return err
}

func Get[T any](ctx context.Context, store Store, key string) (out T, err error) {
	entry, err := store.Get(ctx, key)
	if err != nil {
		return
	}
	err = json.Unmarshal(entry.Data, &out)
	return
}
