package date

import (
	"fmt"
	"iter"
)

// Range is an inclusive range of days.
type Range struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// NewRange returns the range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// Since returns the open ended range [from, MaxDate].
func Since(from Date) Range { return Range{From: from, To: MaxDate} }

// Year returns the range covering the whole calendar year.
func Year(year int) Range {
	return Range{From: New(year, 1, 1), To: New(year, 12, 31)}
}

// Contains reports whether d lies in the range, boundaries included.
func (r Range) Contains(d Date) bool { return !d.Before(r.From) && !d.After(r.To) }

// Overlaps reports whether r and o share at least one day.
func (r Range) Overlaps(o Range) bool { return !r.To.Before(o.From) && !o.To.Before(r.From) }

// IsOpen reports whether the range has no end.
func (r Range) IsOpen() bool { return r.To == MaxDate }

// IsValid reports whether From is not after To.
func (r Range) IsValid() bool { return !r.From.After(r.To) }

// Days yields every day of the range in ascending order.
// The sequence can be iterated multiple times.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		if !r.IsValid() {
			return
		}
		for d := r.From; !d.After(r.To); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
			if d == MaxDate {
				return
			}
		}
	}
}

func (r Range) String() string {
	if r.IsOpen() {
		return fmt.Sprintf("%s..", r.From)
	}
	return fmt.Sprintf("%s..%s", r.From, r.To)
}
