// Command tradingcal maintains and queries trading calendars.
//
//	tradingcal -config folio.yaml set asx-2019.yaml
//	tradingcal next 2019-12-25
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := newCommander(flag.CommandLine, path.Base(os.Args[0]), &globals{out: os.Stdout, errOut: os.Stderr})
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

func newCommander(fs *flag.FlagSet, name string, g *globals) *subcommands.Commander {
	fs.StringVar(&g.configPath, "config", "folio.yaml", "path to the YAML configuration, defaults apply when missing")
	fs.StringVar(&g.calendar, "calendar", "ASX", "calendar name")

	commander := subcommands.NewCommander(fs, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&setCmd{g: g}, "maintain")
	commander.Register(&checkCmd{g: g}, "query")
	commander.Register(&nextCmd{g: g}, "query")
	commander.Register(&prevCmd{g: g}, "query")
	commander.Register(&daysCmd{g: g}, "query")
	commander.Register(&listCmd{g: g}, "query")
	return commander
}
