// Package cache provides a small generic key-value cache with LRU eviction
// and optional per-entry TTL.
//
// [LRU] is safe for concurrent use. [Nop] satisfies [Cache] without storing
// anything and is the default where caching is optional.
//
//	c := cache.NewLRU[uuid.UUID, *Calendar](cache.LRUOpts{Size: 64})
//	c.Put(id, cal, cache.WithTTL(5*time.Minute))
//
// Expired entries are evicted lazily on access.
package cache
