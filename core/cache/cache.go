package cache

import "time"

type PutOptions struct {
	TTL time.Duration
}

type PutOption func(*PutOptions)

// WithTTL expires the entry after ttl. Zero means no expiry.
func WithTTL(ttl time.Duration) PutOption {
	return func(o *PutOptions) {
		o.TTL = ttl
	}
}

type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, val V, opts ...PutOption)
	Delete(key K)
	Len() int
}
