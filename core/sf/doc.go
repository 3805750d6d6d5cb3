// Package sf is a typed wrapper around golang.org/x/sync/singleflight.
//
// The key/value event store uses it so that concurrent loads of the same
// stored entity hit the backend once:
//
//	g := sf.New[*es.StoredEntity]()
//	e, _, err := g.Do(key, func() (*es.StoredEntity, error) { return load(ctx, key) })
package sf
