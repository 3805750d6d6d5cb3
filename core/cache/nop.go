package cache

// Nop never stores anything.
type Nop[K comparable, V any] struct{}

func (Nop[K, V]) Get(K) (v V, ok bool)   { return }
func (Nop[K, V]) Put(K, V, ...PutOption) {}
func (Nop[K, V]) Delete(K)               {}
func (Nop[K, V]) Len() int               { return 0 }

func NewNop[K comparable, V any]() Nop[K, V] { return Nop[K, V]{} }

var _ Cache[string, any] = Nop[string, any]{}
