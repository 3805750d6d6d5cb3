// Package effective stores attributes whose value changes at specific dates.
//
// A [Properties] value is a stack of [Values] slices, most recent first. Each
// slice holds the attribute value for an inclusive date range. Slices never
// overlap and never leave a gap between them, and only the top slice may
// still be open (ending at [date.MaxDate]).
//
// History is write-once: [Properties.Change] and [Properties.End] only ever
// touch the top slice.
//
//	var names effective.Properties[string]
//	_ = names.Change(date.MustParse("2019-01-01"), "BHP Billiton")
//	_ = names.Change(date.MustParse("2022-01-31"), "BHP Group")
//	name, _ := names.ValueAt(date.MustParse("2020-06-30")) // "BHP Billiton"
package effective

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/codewandler/folio-go/core/date"
)

var (
	// ErrEffectiveDate reports an attempt to modify a closed period, a store
	// that was never set, or a period that was already ended.
	ErrEffectiveDate = errors.New("effective date")
	// ErrNotFound is returned when no slice covers the requested date.
	ErrNotFound = errors.New("no effective value")
	// ErrEmpty is returned by queries on a store that has no slices.
	ErrEmpty = errors.New("no effective values")
)

// Values is one slice of an attribute history.
type Values[T any] struct {
	Period     date.Range `json:"period"`
	Properties T          `json:"properties"`
}

// IsCurrent reports whether the slice is still open.
func (v Values[T]) IsCurrent() bool { return v.Period.IsOpen() }

// Properties is the versioned attribute. The zero value is empty and ready to use.
// It is not safe for concurrent mutation.
type Properties[T any] struct {
	// ascending by From, the top of the stack is the last element
	values []Values[T]
}

// Len returns the number of slices.
func (p *Properties[T]) Len() int { return len(p.values) }

func (p *Properties[T]) top() *Values[T] {
	if len(p.values) == 0 {
		return nil
	}
	return &p.values[len(p.values)-1]
}

// Current returns the most recent slice.
func (p *Properties[T]) Current() (Values[T], bool) {
	if t := p.top(); t != nil {
		return *t, true
	}
	return Values[T]{}, false
}

// Values yields all slices, most recent first.
func (p *Properties[T]) Values() iter.Seq[Values[T]] {
	return func(yield func(Values[T]) bool) {
		for i := len(p.values) - 1; i >= 0; i-- {
			if !yield(p.values[i]) {
				return
			}
		}
	}
}

// find returns the index of the slice covering d, or -1.
func (p *Properties[T]) find(d date.Date) int {
	for i := len(p.values) - 1; i >= 0; i-- {
		v := p.values[i]
		if v.Period.Contains(d) {
			return i
		}
		if v.Period.From.Before(d) {
			// ordered: nothing below can cover d
			return -1
		}
	}
	return -1
}

// IsEffectiveAt reports whether some slice covers d.
func (p *Properties[T]) IsEffectiveAt(d date.Date) bool { return p.find(d) >= 0 }

// ValueAt returns the value effective at d.
func (p *Properties[T]) ValueAt(d date.Date) (T, error) {
	i := p.find(d)
	if i < 0 {
		var zero T
		return zero, fmt.Errorf("%w at %s", ErrNotFound, d)
	}
	return p.values[i].Properties, nil
}

// ClosestTo returns the value effective at d. When d is outside of every
// slice it returns the most recent value if d is later than all of them, and
// the oldest value otherwise.
func (p *Properties[T]) ClosestTo(d date.Date) (T, error) {
	if len(p.values) == 0 {
		var zero T
		return zero, ErrEmpty
	}
	if i := p.find(d); i >= 0 {
		return p.values[i].Properties, nil
	}
	if d.Before(p.values[0].Period.From) {
		return p.values[0].Properties, nil
	}
	return p.top().Properties, nil
}

// Matches reports whether any slice satisfies pred.
func (p *Properties[T]) Matches(pred func(T) bool) bool {
	for _, v := range p.values {
		if pred(v.Properties) {
			return true
		}
	}
	return false
}

// MatchesAt reports whether the slice covering d satisfies pred.
func (p *Properties[T]) MatchesAt(d date.Date, pred func(T) bool) bool {
	i := p.find(d)
	return i >= 0 && pred(p.values[i].Properties)
}

// MatchesIn reports whether any slice overlapping r satisfies pred.
func (p *Properties[T]) MatchesIn(r date.Range, pred func(T) bool) bool {
	for _, v := range p.values {
		if v.Period.Overlaps(r) && pred(v.Properties) {
			return true
		}
	}
	return false
}

// Change makes value effective from d onwards.
//
// Changing on the start date of the current slice replaces it, any other date
// inside the current slice closes it the day before d. Dates outside of the
// current slice are rejected with ErrEffectiveDate.
func (p *Properties[T]) Change(d date.Date, value T) error {
	if t := p.top(); t != nil {
		if !t.Period.Contains(d) {
			return fmt.Errorf("%w: only the current period can be modified (%s not in %s)", ErrEffectiveDate, d, t.Period)
		}
		if d == t.Period.From {
			p.values = p.values[:len(p.values)-1]
		} else {
			t.Period.To = d.AddDays(-1)
		}
	}
	p.values = append(p.values, Values[T]{
		Period:     date.Since(d),
		Properties: value,
	})
	return nil
}

// End closes the current slice on d, d included.
func (p *Properties[T]) End(d date.Date) error {
	t := p.top()
	if t == nil {
		return fmt.Errorf("%w: not active", ErrEffectiveDate)
	}
	if !t.IsCurrent() {
		return fmt.Errorf("%w: already ended on %s", ErrEffectiveDate, t.Period.To)
	}
	if !t.Period.Contains(d) {
		return fmt.Errorf("%w: only the current period can be modified (%s not in %s)", ErrEffectiveDate, d, t.Period)
	}
	t.Period.To = d
	return nil
}

// MarshalJSON encodes the stack most recent first.
func (p Properties[T]) MarshalJSON() ([]byte, error) {
	out := make([]Values[T], 0, len(p.values))
	for i := len(p.values) - 1; i >= 0; i-- {
		out = append(out, p.values[i])
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a stack written by MarshalJSON and checks it.
func (p *Properties[T]) UnmarshalJSON(data []byte) error {
	var in []Values[T]
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	values := make([]Values[T], 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		values = append(values, in[i])
	}
	if err := check(values); err != nil {
		return err
	}
	p.values = values
	return nil
}

// check verifies the stack invariants on an ascending slice list.
func check[T any](values []Values[T]) error {
	for i, v := range values {
		if !v.Period.IsValid() {
			return fmt.Errorf("%w: invalid period %s", ErrEffectiveDate, v.Period)
		}
		if i == 0 {
			continue
		}
		prev := values[i-1]
		if prev.Period.IsOpen() {
			return fmt.Errorf("%w: open period %s is not the most recent", ErrEffectiveDate, prev.Period)
		}
		if prev.Period.To.AddDays(1) != v.Period.From {
			return fmt.Errorf("%w: %s does not follow %s", ErrEffectiveDate, v.Period, prev.Period)
		}
	}
	return nil
}
