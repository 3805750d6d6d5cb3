package calendar

import (
	"slices"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/folio-go/core/date"
	"github.com/codewandler/folio-go/core/es"
)

var (
	newYears  = NonTradingDay{Date: date.MustParse("2019-01-01"), Description: "New Years"}
	christmas = NonTradingDay{Date: date.MustParse("2019-12-25"), Description: "Christmas"}
)

func calendar2019(t *testing.T) *Calendar {
	t.Helper()
	c := New(uuid.New())
	require.NoError(t, c.SetNonTradingDays(2019, []NonTradingDay{newYears, christmas}))
	return c
}

func TestCalendar_scenario2019(t *testing.T) {
	c := calendar2019(t)

	require.False(t, c.IsTradingDay(date.MustParse("2019-01-01")))
	require.True(t, c.IsTradingDay(date.MustParse("2019-01-02")))
	require.Equal(t, date.MustParse("2019-01-02"), c.NextTradingDay(date.MustParse("2019-01-01")))
	require.Equal(t, date.MustParse("2018-12-31"), c.PreviousTradingDay(date.MustParse("2019-01-01")))

	days := slices.Collect(c.TradingDays(date.NewRange(date.MustParse("2019-01-01"), date.MustParse("2019-01-10"))))
	require.Len(t, days, 7)
	for i := 1; i < len(days); i++ {
		require.True(t, days[i].After(days[i-1]), "strictly ascending")
	}
}

func TestCalendar_weekends(t *testing.T) {
	c := New(uuid.New())
	sat := date.MustParse("2019-01-05")
	require.False(t, c.IsTradingDay(sat))
	require.False(t, c.IsTradingDay(sat.AddDays(1)))
	require.Equal(t, date.MustParse("2019-01-07"), c.NextTradingDay(sat))
	require.Equal(t, date.MustParse("2019-01-04"), c.PreviousTradingDay(sat))

	// inclusive on trading days
	fri := date.MustParse("2019-01-04")
	require.Equal(t, fri, c.NextTradingDay(fri))
	require.Equal(t, fri, c.PreviousTradingDay(fri))
}

func TestCalendar_setReplaces(t *testing.T) {
	a := NonTradingDay{Date: date.MustParse("2019-03-04"), Description: "A"}
	b := NonTradingDay{Date: date.MustParse("2019-03-05"), Description: "B"}
	other := NonTradingDay{Date: date.MustParse("2020-01-01"), Description: "other year"}

	c := New(uuid.New())
	require.NoError(t, c.SetNonTradingDays(2020, []NonTradingDay{other}))
	require.NoError(t, c.SetNonTradingDays(2019, []NonTradingDay{a}))
	require.NoError(t, c.SetNonTradingDays(2019, []NonTradingDay{b}))

	require.True(t, c.IsTradingDay(a.Date))
	require.False(t, c.IsTradingDay(b.Date))
	require.False(t, c.IsTradingDay(other.Date), "other years untouched")
	require.Equal(t, []NonTradingDay{b}, c.NonTradingDays(2019))
	require.Equal(t, []int{2019, 2020}, c.Years())
	require.Equal(t, es.Version(3), c.GetVersion())
}

func TestCalendar_invalidYearIsAtomic(t *testing.T) {
	c := calendar2019(t)
	before := c.NonTradingDays(2019)

	err := c.SetNonTradingDays(2019, []NonTradingDay{
		{Date: date.MustParse("2019-04-19"), Description: "Good Friday"},
		{Date: date.MustParse("2020-01-01"), Description: "New Years"},
	})
	require.ErrorIs(t, err, es.ErrInvalidArgument)
	require.Contains(t, err.Error(), "2020-01-01")

	require.Equal(t, before, c.NonTradingDays(2019))
	require.True(t, c.IsTradingDay(date.MustParse("2019-04-19")))
	require.Equal(t, es.Version(1), c.GetVersion())
	require.Equal(t, 1, c.PendingEvents())

	require.ErrorIs(t, c.SetNonTradingDays(0, nil), es.ErrInvalidArgument)
}

func TestCalendar_duplicatesKeepFirst(t *testing.T) {
	c := New(uuid.New())
	require.NoError(t, c.SetNonTradingDays(2019, []NonTradingDay{
		christmas,
		newYears,
		{Date: christmas.Date, Description: "duplicate"},
	}))
	require.Equal(t, []NonTradingDay{newYears, christmas}, c.NonTradingDays(2019))
}

func TestCalendar_clearYear(t *testing.T) {
	c := calendar2019(t)
	require.NoError(t, c.SetNonTradingDays(2019, nil))
	require.Empty(t, c.NonTradingDays(2019))
	require.True(t, c.IsTradingDay(newYears.Date))
}

func TestCalendar_eventCarriesCopy(t *testing.T) {
	days := []NonTradingDay{newYears}
	c := New(uuid.New())
	require.NoError(t, c.SetNonTradingDays(2019, days))
	days[0] = christmas

	events := c.FetchEvents()
	require.Len(t, events, 1)
	set := events[0].(NonTradingDaysSet)
	require.Equal(t, []NonTradingDay{newYears}, set.Days)
	require.Equal(t, es.Version(0), set.GetVersion())
	require.Equal(t, c.GetID(), set.GetEntityID())
}

func TestCalendar_replayDeterminism(t *testing.T) {
	live := calendar2019(t)
	require.NoError(t, live.SetNonTradingDays(2020, []NonTradingDay{{Date: date.MustParse("2020-01-01")}}))
	require.NoError(t, live.SetNonTradingDays(2019, []NonTradingDay{christmas}))

	events := live.FetchEvents()
	replayed, err := Factory().Create(live.GetID(), Type)
	require.NoError(t, err)
	require.NoError(t, es.ApplyEvents(replayed, events...))

	require.Equal(t, live.GetVersion(), replayed.GetVersion())
	require.Equal(t, es.Version(len(events)), replayed.GetVersion())
	for d := range date.NewRange(date.MustParse("2018-12-01"), date.MustParse("2020-02-01")).Days() {
		require.Equal(t, live.IsTradingDay(d), replayed.IsTradingDay(d), "day %s", d)
	}
}

type holidayMoved struct{ es.BaseEvent }

func TestCalendar_unknownEventFailsClosed(t *testing.T) {
	c := New(uuid.New())
	err := es.ApplyEvents(c, holidayMoved{})
	require.ErrorIs(t, err, es.ErrUnsupportedEventType)
	require.Equal(t, es.Version(0), c.GetVersion())
}

func TestCalendar_TradingDaysRestartableSnapshot(t *testing.T) {
	c := calendar2019(t)
	seq := c.TradingDays(date.NewRange(date.MustParse("2019-12-23"), date.MustParse("2019-12-27")))

	first := slices.Collect(seq)
	require.NoError(t, c.SetNonTradingDays(2019, nil))
	second := slices.Collect(seq)

	require.Equal(t, first, second)
	require.Equal(t, []date.Date{
		date.MustParse("2019-12-23"),
		date.MustParse("2019-12-24"),
		date.MustParse("2019-12-26"),
		date.MustParse("2019-12-27"),
	}, first)

	for d := range seq {
		require.Equal(t, date.MustParse("2019-12-23"), d)
		break
	}
}
