package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const asx2019 = `year: 2019
days:
  - date: 2019-01-01
    description: New Year's Day
  - date: 2019-01-28
    description: Australia Day
  - date: 2019-04-19
    description: Good Friday
  - date: 2019-04-22
    description: Easter Monday
  - date: 2019-04-25
    description: Anzac Day
  - date: 2019-06-10
    description: Queen's Birthday
  - date: 2019-12-25
    description: Christmas Day
  - date: 2019-12-26
    description: Boxing Day
`

type cli struct {
	t      *testing.T
	dir    string
	config string
}

func newCLI(t *testing.T) *cli {
	t.Setenv("NATS_URL", "")
	t.Setenv("FOLIO_STORE", "")

	dir := t.TempDir()
	config := filepath.Join(dir, "folio.yaml")
	doc := fmt.Sprintf(`log: {level: debug}
store:
  backend: file
  file: {dir: %q}
metrics:
  textfile: %q
`, filepath.Join(dir, "data"), filepath.Join(dir, "folio.prom"))
	require.NoError(t, os.WriteFile(config, []byte(doc), 0o644))
	return &cli{t: t, dir: dir, config: config}
}

func (c *cli) file(name, content string) string {
	path := filepath.Join(c.dir, name)
	require.NoError(c.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (c *cli) run(args ...string) (string, subcommands.ExitStatus) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	fs := flag.NewFlagSet("tradingcal", flag.ContinueOnError)
	commander := newCommander(fs, "tradingcal", &globals{out: &out, errOut: &errOut})
	require.NoError(c.t, fs.Parse(append([]string{"-config", c.config}, args...)))
	status := commander.Execute(context.Background())
	c.t.Log(errOut.String())
	return out.String(), status
}

func (c *cli) ok(args ...string) string {
	c.t.Helper()
	out, status := c.run(args...)
	require.Equal(c.t, subcommands.ExitSuccess, status, "tradingcal %v", args)
	return out
}

func TestTradingcal(t *testing.T) {
	c := newCLI(t)

	out := c.ok("set", c.file("2019.yaml", asx2019))
	assert.Contains(t, out, "+ 2019-01-01 New Year's Day\n")
	assert.Contains(t, out, "+ 2019-12-26 Boxing Day\n")

	prom, err := os.ReadFile(filepath.Join(c.dir, "folio.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), "folio_es_events_appended_total")

	assert.Equal(t, "2019-01-01 is not a trading day\n", c.ok("check", "2019-01-01"))
	assert.Equal(t, "2019-01-02 is a trading day\n", c.ok("check", "2019-01-02"))
	assert.Equal(t, "2019-12-27\n", c.ok("next", "2019-12-25"))
	assert.Equal(t, "2019-04-18\n", c.ok("prev", "2019-04-22"))
	assert.Equal(t, "7\n", c.ok("days", "-c", "2019-04-15", "2019-04-26"))
	assert.Equal(t, "2019-04-23\n2019-04-24\n", c.ok("days", "2019-04-23", "2019-04-25"))

	list := c.ok("list", "-year", "2019")
	assert.Contains(t, list, "2019-06-10 Queen's Birthday\n")
	assert.Empty(t, c.ok("list", "-year", "2020"))
}

func TestTradingcal_setReplacesYear(t *testing.T) {
	c := newCLI(t)
	c.ok("set", c.file("2019.yaml", asx2019))

	changed := c.file("2019b.yaml", `year: 2019
days:
  - {date: 2019-01-01, description: New Year's Day}
  - {date: 2019-11-05, description: Melbourne Cup}
`)
	out := c.ok("set", "-n", changed)
	assert.Contains(t, out, "- 2019-06-10\n")
	assert.Contains(t, out, "+ 2019-11-05 Melbourne Cup\n")
	assert.NotContains(t, out, "2019-01-01")
	assert.Equal(t, "2019-06-10 is not a trading day\n", c.ok("check", "2019-06-10"), "dry run stores nothing")

	c.ok("set", changed)
	assert.Equal(t, "2019-06-10 is a trading day\n", c.ok("check", "2019-06-10"))
	assert.Equal(t, "2019-11-05 is not a trading day\n", c.ok("check", "2019-11-05"))
}

func TestTradingcal_errors(t *testing.T) {
	c := newCLI(t)

	_, status := c.run("set", c.file("bad.yaml", "year: 2019\ndays:\n  - {date: 2020-01-01}\n"))
	assert.Equal(t, subcommands.ExitFailure, status, "day outside the year")

	_, status = c.run("check")
	assert.Equal(t, subcommands.ExitUsageError, status)

	_, status = c.run("days", "2019-02-01", "2019-01-01")
	assert.Equal(t, subcommands.ExitUsageError, status)

	// nothing stored yet, only weekends are closed
	assert.Equal(t, "2019-01-01 is a trading day\n", c.ok("check", "2019-01-01"))
}
