package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"

	"github.com/codewandler/folio-go/core/date"
	"github.com/codewandler/folio-go/core/ds"
	"github.com/codewandler/folio-go/core/es"
	"github.com/codewandler/folio-go/domain/calendar"
)

// dayFile is the YAML document read by set.
type dayFile struct {
	Year int                      `yaml:"year"`
	Days []calendar.NonTradingDay `yaml:"days"`
}

func readDayFile(path string) (dayFile, error) {
	var f dayFile
	b, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

func dateArg(f *flag.FlagSet, i int) (date.Date, error) {
	if f.NArg() <= i {
		return date.Date{}, fmt.Errorf("missing date argument")
	}
	return date.Parse(f.Arg(i))
}

// === set ===

type setCmd struct {
	g      *globals
	dryRun bool
}

func (*setCmd) Name() string     { return "set" }
func (*setCmd) Synopsis() string { return "replace the non-trading days of one year" }
func (*setCmd) Usage() string {
	return `tradingcal set [-n] <file.yaml>

  Reads a YAML document of the form

    year: 2019
    days:
      - date: 2019-01-01
        description: New Year's Day

  and replaces the non-trading days of that year. Added and removed days are
  printed as +/- lines.
`
}

func (c *setCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "n", false, "print the changes without storing them")
}

func (c *setCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	file, err := readDayFile(f.Arg(0))
	if err != nil {
		fmt.Fprintln(c.g.errOut, err)
		return subcommands.ExitFailure
	}

	return run(ctx, c.g, func(a *app) error {
		var before []calendar.NonTradingDay
		apply := func(cal *calendar.Calendar) error {
			before = cal.NonTradingDays(file.Year)
			if err := cal.SetNonTradingDays(file.Year, file.Days); err != nil {
				return err
			}
			if c.dryRun {
				return errDryRun
			}
			return nil
		}

		err := a.repo.WithTransaction(ctx, c.g.calendarID(), apply, es.WithCreate())
		if err != nil && !errors.Is(err, errDryRun) {
			return err
		}
		printDiff(a, before, file.Days)
		return nil
	})
}

var errDryRun = errors.New("dry run")

func printDiff(a *app, before, after []calendar.NonTradingDay) {
	descriptions := map[date.Date]string{}
	dates := func(days []calendar.NonTradingDay) *ds.Set[date.Date] {
		s := ds.NewSet[date.Date]()
		for _, d := range days {
			if s.Add(d.Date) {
				descriptions[d.Date] = d.Description
			}
		}
		return s
	}
	add, remove := dates(before).Diff(dates(after))
	for d := range remove.All() {
		fmt.Fprintf(a.out, "- %s\n", d)
	}
	for d := range add.All() {
		fmt.Fprintf(a.out, "+ %s %s\n", d, descriptions[d])
	}
	a.log.Info("non-trading days set", "added", add.Len(), "removed", remove.Len())
}

// === check ===

type checkCmd struct{ g *globals }

func (*checkCmd) Name() string             { return "check" }
func (*checkCmd) Synopsis() string         { return "tell whether a date is a trading day" }
func (*checkCmd) Usage() string            { return "tradingcal check <date>\n" }
func (*checkCmd) SetFlags(_ *flag.FlagSet) {}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d, err := dateArg(f, 0)
	if err != nil {
		fmt.Fprintln(c.g.errOut, err)
		return subcommands.ExitUsageError
	}
	return run(ctx, c.g, func(a *app) error {
		cal, err := a.load(ctx, c.g.calendarID())
		if err != nil {
			return err
		}
		if cal.IsTradingDay(d) {
			fmt.Fprintf(a.out, "%s is a trading day\n", d)
		} else {
			fmt.Fprintf(a.out, "%s is not a trading day\n", d)
		}
		return nil
	})
}

// === next / prev ===

type nextCmd struct{ g *globals }

func (*nextCmd) Name() string             { return "next" }
func (*nextCmd) Synopsis() string         { return "print the first trading day on or after a date" }
func (*nextCmd) Usage() string            { return "tradingcal next <date>\n" }
func (*nextCmd) SetFlags(_ *flag.FlagSet) {}

func (c *nextCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return step(ctx, c.g, f, (*calendar.Calendar).NextTradingDay)
}

type prevCmd struct{ g *globals }

func (*prevCmd) Name() string             { return "prev" }
func (*prevCmd) Synopsis() string         { return "print the last trading day on or before a date" }
func (*prevCmd) Usage() string            { return "tradingcal prev <date>\n" }
func (*prevCmd) SetFlags(_ *flag.FlagSet) {}

func (c *prevCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return step(ctx, c.g, f, (*calendar.Calendar).PreviousTradingDay)
}

func step(ctx context.Context, g *globals, f *flag.FlagSet, fn func(*calendar.Calendar, date.Date) date.Date) subcommands.ExitStatus {
	d, err := dateArg(f, 0)
	if err != nil {
		fmt.Fprintln(g.errOut, err)
		return subcommands.ExitUsageError
	}
	return run(ctx, g, func(a *app) error {
		cal, err := a.load(ctx, g.calendarID())
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, fn(cal, d))
		return nil
	})
}

// === days ===

type daysCmd struct {
	g     *globals
	count bool
}

func (*daysCmd) Name() string     { return "days" }
func (*daysCmd) Synopsis() string { return "list the trading days between two dates" }
func (*daysCmd) Usage() string    { return "tradingcal days [-c] <from> <to>\n" }

func (c *daysCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.count, "c", false, "print the number of trading days only")
}

func (c *daysCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := dateArg(f, 0)
	if err != nil {
		fmt.Fprintln(c.g.errOut, err)
		return subcommands.ExitUsageError
	}
	to, err := dateArg(f, 1)
	if err != nil {
		fmt.Fprintln(c.g.errOut, err)
		return subcommands.ExitUsageError
	}
	r := date.NewRange(from, to)
	if !r.IsValid() {
		fmt.Fprintf(c.g.errOut, "invalid range %s\n", r)
		return subcommands.ExitUsageError
	}
	return run(ctx, c.g, func(a *app) error {
		cal, err := a.load(ctx, c.g.calendarID())
		if err != nil {
			return err
		}
		n := 0
		for d := range cal.TradingDays(r) {
			n++
			if !c.count {
				fmt.Fprintln(a.out, d)
			}
		}
		if c.count {
			fmt.Fprintln(a.out, n)
		}
		return nil
	})
}

// === list ===

type listCmd struct {
	g    *globals
	year int
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list the stored non-trading days" }
func (*listCmd) Usage() string    { return "tradingcal list [-year <year>]\n" }

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "only list this year")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.g, func(a *app) error {
		cal, err := a.load(ctx, c.g.calendarID())
		if err != nil {
			return err
		}
		years := cal.Years()
		if c.year != 0 {
			years = []int{c.year}
		}
		for _, y := range years {
			for _, d := range cal.NonTradingDays(y) {
				fmt.Fprintf(a.out, "%s %s\n", d.Date, d.Description)
			}
		}
		return nil
	})
}
