package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/codewandler/folio-go/ports/kv"
)

const defaultBucket = "folio"

type KvConfig struct {
	Connect Connector    // If nil, ConnectDefault() is used.
	Log     *slog.Logger // optional
	Bucket  string       // default: folio
	// MaxBytes bounds the bucket size, -1 (default) means unlimited.
	MaxBytes int64
	// History is the number of revisions kept per key, default 1.
	History uint8
}

// KvStore is a kv.Store on top of a JetStream key/value bucket. Revisions
// map one to one to the bucket revisions, so Create and Update give the same
// optimistic concurrency across processes as they do in memory.
type KvStore struct {
	kv    jetstream.KeyValue
	log   *slog.Logger
	close closeFunc
}

func NewKvStore(ctx context.Context, cfg KvConfig) (*KvStore, error) {
	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}

	nc, closeConn, err := doConnect()
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		closeConn()
		return nil, err
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = defaultBucket
	}
	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = -1
	}

	bkt, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:   bucket,
		Storage:  jetstream.FileStorage,
		MaxBytes: maxBytes,
		History:  cfg.History,
	})
	if err != nil {
		closeConn()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}

	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	return &KvStore{
		kv:    bkt,
		log:   log.With(slog.String("bucket", bucket)),
		close: closeConn,
	}, nil
}

// Close releases the connection.
func (k *KvStore) Close() { k.close() }

func (k *KvStore) Put(ctx context.Context, key string, data []byte) (uint64, error) {
	if err := kv.ValidateKey(key); err != nil {
		return 0, err
	}
	return k.kv.Put(ctx, key, data)
}

func (k *KvStore) Create(ctx context.Context, key string, data []byte) (uint64, error) {
	if err := kv.ValidateKey(key); err != nil {
		return 0, err
	}
	rev, err := k.kv.Create(ctx, key, data)
	if errors.Is(err, jetstream.ErrKeyExists) {
		return 0, kv.ErrKeyExists
	}
	return rev, err
}

func (k *KvStore) Update(ctx context.Context, key string, data []byte, revision uint64) (uint64, error) {
	if err := kv.ValidateKey(key); err != nil {
		return 0, err
	}
	rev, err := k.kv.Update(ctx, key, data, revision)
	if err != nil {
		var apiErr *jetstream.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence {
			k.log.Debug("revision mismatch", slog.String("key", key), slog.Uint64("revision", revision))
			return 0, kv.ErrRevisionMismatch
		}
		return 0, err
	}
	return rev, nil
}

func (k *KvStore) Get(ctx context.Context, key string) (kv.Entry, error) {
	if err := kv.ValidateKey(key); err != nil {
		return kv.Entry{}, err
	}
	e, err := k.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return kv.Entry{}, kv.ErrNotFound
		}
		return kv.Entry{}, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return kv.Entry{Data: e.Value(), Revision: e.Revision()}, nil
}

func (k *KvStore) Delete(ctx context.Context, key string) error {
	if err := kv.ValidateKey(key); err != nil {
		return err
	}
	return k.kv.Delete(ctx, key)
}

func (k *KvStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	lister, err := k.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []string{}, nil
		}
		return nil, err
	}
	defer lister.Stop()

	keys := make([]string, 0)
	for key := range lister.Keys() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	// the lister delivers in stream order
	slices.Sort(keys)
	return keys, nil
}

var _ kv.Store = (*KvStore)(nil)
