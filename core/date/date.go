// Package date provides a calendar day value type and inclusive date ranges.
//
// A [Date] has day granularity and no time zone. It is a comparable value:
// two dates denoting the same day are equal with ==, which makes them usable
// as map keys and in binary searches.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

const readFormat = "2006-1-2" // permissive, accepts 2019-1-2

// Format is the ISO-8601 layout used when writing dates.
const Format = "2006-01-02"

var (
	// MinDate is the earliest representable date.
	MinDate = New(1, time.January, 1)
	// MaxDate marks an open ended period ("still current").
	MaxDate = New(9999, time.December, 31)
)

// Date is a day with no time of day.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date, New(2019, 1, 32) is 2019-02-01.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// FromTime truncates t to its calendar day in t's location.
func FromTime(t time.Time) Date { return New(t.Date()) }

// Today returns the current date in local time.
func Today() Date { return FromTime(time.Now()) }

// time is the canonical instant of the day: midnight UTC.
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.time() }

func (d Date) Year() int             { return d.y }
func (d Date) Month() time.Month     { return d.m }
func (d Date) Day() int              { return d.d }
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }
func (d Date) IsZero() bool          { return d == Date{} }
func (d Date) AddDays(n int) Date    { return New(d.y, d.m, d.d+n) }
func (d Date) AddYears(n int) Date   { return New(d.y+n, d.m, d.d) }
func (d Date) Before(x Date) bool    { return d.Compare(x) < 0 }
func (d Date) After(x Date) bool     { return d.Compare(x) > 0 }
func (d Date) String() string        { return d.time().Format(Format) }

// Format formats the day using a time layout.
func (d Date) Format(layout string) string { return d.time().Format(layout) }

// IsWeekend reports whether d is a Saturday or a Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after x. It is suitable for slices.BinarySearchFunc.
func (d Date) Compare(x Date) int {
	switch {
	case d.y != x.y:
		return cmpInt(d.y, x.y)
	case d.m != x.m:
		return cmpInt(int(d.m), int(x.m))
	default:
		return cmpInt(d.d, x.d)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Min returns the earlier of a and b.
func Min(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// Max returns the later of a and b.
func Max(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// Parse parses "2006-01-02". Single digit months and days are accepted.
func Parse(str string) (Date, error) {
	on, err := time.Parse(readFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, Format, err)
	}
	return FromTime(on), nil
}

// MustParse is like Parse but panics on error. Meant for tests and constants.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := Parse(str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText lets dates be used as YAML scalars and JSON map keys.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
)
