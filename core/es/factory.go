package es

import (
	"fmt"

	"github.com/google/uuid"
)

// FactoryFunc returns a blank aggregate with version 0.
type FactoryFunc[T Aggregate] func(id uuid.UUID) T

// Factory creates blank aggregates ready for replay. Stored records carry a
// type discriminator, so one aggregate type may have several constructors
// (a stock and a stapled security share the Stock type).
type Factory[T Aggregate] struct {
	defaultType string
	ctors       map[string]FactoryFunc[T]
}

// NewFactory registers ctor under the type the aggregates it builds report.
func NewFactory[T Aggregate](ctor FactoryFunc[T]) *Factory[T] {
	f := &Factory[T]{ctors: map[string]FactoryFunc[T]{}}
	f.defaultType = ctor(uuid.Nil).GetType()
	f.ctors[f.defaultType] = ctor
	return f
}

// Register adds a constructor for another stored type discriminator.
func (f *Factory[T]) Register(storedType string, ctor FactoryFunc[T]) *Factory[T] {
	f.ctors[storedType] = ctor
	return f
}

// DefaultType is the discriminator of the constructor given to NewFactory.
func (f *Factory[T]) DefaultType() string { return f.defaultType }

// Create returns a blank aggregate for storedType.
func (f *Factory[T]) Create(id uuid.UUID, storedType string) (T, error) {
	ctor, ok := f.ctors[storedType]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrUnknownAggregateType, storedType)
	}
	agg := ctor(id)
	if agg.GetVersion() != 0 || agg.PendingEvents() != 0 {
		var zero T
		return zero, fmt.Errorf("factory for %q returned a used aggregate", storedType)
	}
	return agg, nil
}
