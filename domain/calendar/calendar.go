// Package calendar implements the exchange trading calendar: weekends and a
// per year set of non-trading days (public holidays, exchange closures).
package calendar

import (
	"iter"
	"slices"

	"github.com/google/uuid"

	"github.com/codewandler/folio-go/core/date"
	"github.com/codewandler/folio-go/core/es"
	"github.com/codewandler/folio-go/core/es/assert"
)

const Type = "TradingCalendar"

// NonTradingDay orders and compares by date only.
type NonTradingDay struct {
	Date        date.Date `json:"date" yaml:"date"`
	Description string    `json:"description" yaml:"description"`
}

func compareDays(a, b NonTradingDay) int { return a.Date.Compare(b.Date) }

// NonTradingDaysSet replaces the non-trading days of one year.
type NonTradingDaysSet struct {
	es.BaseEvent
	Year int             `json:"year"`
	Days []NonTradingDay `json:"days"`
}

func (NonTradingDaysSet) EventType() string { return "calendar.non_trading_days_set" }

func RegisterEvents(r es.Registrar) {
	es.RegisterEvent[NonTradingDaysSet](r)
}

// Calendar is the trading calendar aggregate. Queries are safe for concurrent
// use once the calendar is no longer mutated.
type Calendar struct {
	es.TrackedEntity

	// days is sorted by date without duplicates.
	days []NonTradingDay
}

func New(id uuid.UUID) *Calendar {
	return &Calendar{TrackedEntity: es.NewTrackedEntity(id)}
}

func Factory() *es.Factory[*Calendar] { return es.NewFactory(New) }

func (c *Calendar) GetType() string { return Type }

func (c *Calendar) Apply(event es.Event) error {
	switch e := event.(type) {
	case NonTradingDaysSet:
		c.applyNonTradingDaysSet(e)
	default:
		return es.UnsupportedEvent(c, event)
	}
	return nil
}

// applyNonTradingDaysSet replaces the year. For duplicate dates the first
// entry wins.
func (c *Calendar) applyNonTradingDaysSet(e NonTradingDaysSet) {
	c.days = slices.DeleteFunc(c.days, func(d NonTradingDay) bool { return d.Date.Year() == e.Year })
	for _, d := range e.Days {
		i, found := slices.BinarySearchFunc(c.days, d, compareDays)
		if found {
			continue
		}
		c.days = slices.Insert(c.days, i, d)
	}
}

// SetNonTradingDays replaces all non-trading days of year with days. Every
// day must lie in year, otherwise nothing changes and an error wrapping
// es.ErrInvalidArgument is returned.
func (c *Calendar) SetNonTradingDays(year int, days []NonTradingDay) error {
	return c.Checked(
		assert.All(
			assert.Truef(year >= date.MinDate.Year() && year <= date.MaxDate.Year(), "year %d is supported", year),
			assert.Each(days, func(d NonTradingDay) assert.Cond {
				return assert.Truef(d.Date.Year() == year, "non-trading day %s (%s) is in %d", d.Date, d.Description, year)
			}),
		),
		es.ApplyAndPublishD(c, NonTradingDaysSet{
			BaseEvent: es.NewBaseEvent(c),
			Year:      year,
			Days:      slices.Clone(days),
		}),
	)
}

// IsTradingDay is false on weekends and non-trading days.
func (c *Calendar) IsTradingDay(d date.Date) bool {
	if d.IsWeekend() {
		return false
	}
	_, found := slices.BinarySearchFunc(c.days, NonTradingDay{Date: d}, compareDays)
	return !found
}

// NextTradingDay returns d if it is a trading day, the first one after d
// otherwise.
func (c *Calendar) NextTradingDay(d date.Date) date.Date {
	for !c.IsTradingDay(d) {
		d = d.AddDays(1)
	}
	return d
}

// PreviousTradingDay returns d if it is a trading day, the last one before d
// otherwise.
func (c *Calendar) PreviousTradingDay(d date.Date) date.Date {
	for !c.IsTradingDay(d) {
		d = d.AddDays(-1)
	}
	return d
}

// TradingDays yields the trading days in r in ascending order. The sequence
// reflects the calendar at the time of the call and can be ranged over
// repeatedly.
func (c *Calendar) TradingDays(r date.Range) iter.Seq[date.Date] {
	snapshot := &Calendar{days: slices.Clone(c.days)}
	return func(yield func(date.Date) bool) {
		for d := range r.Days() {
			if snapshot.IsTradingDay(d) && !yield(d) {
				return
			}
		}
	}
}

// NonTradingDays returns the non-trading days of year in date order.
func (c *Calendar) NonTradingDays(year int) []NonTradingDay {
	from, _ := slices.BinarySearchFunc(c.days, NonTradingDay{Date: date.New(year, 1, 1)}, compareDays)
	to, _ := slices.BinarySearchFunc(c.days, NonTradingDay{Date: date.New(year+1, 1, 1)}, compareDays)
	return slices.Clone(c.days[from:to])
}

// Years returns the years having at least one non-trading day, ascending.
func (c *Calendar) Years() []int {
	var years []int
	for _, d := range c.days {
		if y := d.Date.Year(); len(years) == 0 || years[len(years)-1] != y {
			years = append(years, y)
		}
	}
	return years
}
