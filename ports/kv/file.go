package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/codewandler/folio-go/internal/codec"
)

const fileExt = ".json"

// FileStore keeps one JSON file per key in a folder, so the data can be
// inspected and versioned with ordinary tools. Values must be JSON documents.
//
// Revisions are checked under an in-process lock only. Do not share a folder
// between processes writing concurrently.
type FileStore struct {
	mu    sync.Mutex
	dir   string
	codec codec.Codec
}

type FileStoreOption func(*FileStore)

// WithCodec replaces the record encoding, indented JSON by default.
func WithCodec(c codec.Codec) FileStoreOption {
	return func(f *FileStore) { f.codec = c }
}

type fileRecord struct {
	Revision uint64          `json:"revision"`
	Data     json.RawMessage `json:"data"`
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, opts ...FileStoreOption) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store folder %s: %w", dir, err)
	}
	f := &FileStore{dir: dir, codec: codec.Pretty}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) path(key string) string { return filepath.Join(f.dir, key+fileExt) }

func (f *FileStore) read(key string) (fileRecord, error) {
	var rec fileRecord
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, err
	}
	if err := f.codec.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("corrupt file for key %s: %w", key, err)
	}
	return rec, nil
}

// write replaces the file atomically via rename.
func (f *FileStore) write(key string, data []byte, prev uint64) (uint64, error) {
	if !json.Valid(data) {
		return 0, fmt.Errorf("value for key %s is not a JSON document", key)
	}
	rec := fileRecord{Revision: prev + 1, Data: data}
	out, err := f.codec.Marshal(rec)
	if err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return 0, err
	}
	return rec.Revision, nil
}

func (f *FileStore) Put(_ context.Context, key string, data []byte) (uint64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, err := f.read(key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, err
	}
	return f.write(key, data, rec.Revision)
}

func (f *FileStore) Create(_ context.Context, key string, data []byte) (uint64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.read(key)
	switch {
	case err == nil:
		return 0, ErrKeyExists
	case !errors.Is(err, ErrNotFound):
		return 0, err
	}
	return f.write(key, data, 0)
}

func (f *FileStore) Update(_ context.Context, key string, data []byte, revision uint64) (uint64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, err := f.read(key)
	if err != nil {
		return 0, err
	}
	if rec.Revision != revision {
		return 0, ErrRevisionMismatch
	}
	return f.write(key, data, rec.Revision)
}

func (f *FileStore) Get(_ context.Context, key string) (Entry, error) {
	if err := ValidateKey(key); err != nil {
		return Entry{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, err := f.read(key)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Data: rec.Data, Revision: rec.Revision}, nil
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileStore) Keys(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".") {
			continue
		}
		if key := strings.TrimSuffix(name, fileExt); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

var _ Store = (*FileStore)(nil)
