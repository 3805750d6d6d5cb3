package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/folio-go/adapters/nats"
	"github.com/codewandler/folio-go/adapters/prometheus"
	"github.com/codewandler/folio-go/core/es"
	"github.com/codewandler/folio-go/domain/calendar"
	"github.com/codewandler/folio-go/internal/config"
	"github.com/codewandler/folio-go/ports/kv"
)

// calendarNamespace derives stable calendar ids from names.
var calendarNamespace = uuid.MustParse("6f1c9a52-4d0e-4a57-9a3e-2b8f0c7d5e11")

// globals are the flags shared by all commands.
type globals struct {
	configPath string
	calendar   string
	out        io.Writer
	errOut     io.Writer
}

func (g *globals) calendarID() uuid.UUID {
	return uuid.NewSHA1(calendarNamespace, []byte(g.calendar))
}

type app struct {
	cfg      *config.Config
	log      *slog.Logger
	out      io.Writer
	registry *promclient.Registry
	repo     *es.Repository[*calendar.Calendar]
	closers  []func()
}

func openApp(ctx context.Context, g *globals) (*app, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      cfg.Logger(g.errOut).With(slog.String("calendar", g.calendar)),
		out:      g.out,
		registry: promclient.NewRegistry(),
	}
	m := prometheus.NewESMetrics(a.registry)

	store, err := a.openStore(ctx, m)
	if err != nil {
		return nil, err
	}

	events := es.NewEventRegistry()
	calendar.RegisterEvents(events)
	a.repo = es.NewRepository(
		store,
		events,
		calendar.Factory(),
		es.WithLog(a.log),
		es.WithMetrics(m),
		es.WithRepoCacheLRU(cfg.Repository.CacheSize, cfg.Repository.CacheTTL),
	)
	return a, nil
}

func (a *app) openStore(ctx context.Context, m es.ESMetrics) (es.EventStore, error) {
	var backing kv.Store
	switch a.cfg.Store.Backend {
	case config.BackendMemory:
		return es.NewInMemoryStore(), nil
	case config.BackendFile:
		fs, err := kv.NewFileStore(a.cfg.Store.File.Dir)
		if err != nil {
			return nil, err
		}
		backing = fs
	case config.BackendNATS:
		ns, err := nats.NewKvStore(ctx, nats.KvConfig{
			Connect: nats.ConnectURL(a.cfg.Store.NATS.URL),
			Log:     a.log,
			Bucket:  a.cfg.Store.NATS.Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open nats bucket %s: %w", a.cfg.Store.NATS.Bucket, err)
		}
		a.closers = append(a.closers, ns.Close)
		backing = ns
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}
	a.log.Debug("store opened", slog.String("backend", a.cfg.Store.Backend))
	return es.NewKVStore(backing, a.cfg.Store.Collection, es.WithLog(a.log), es.WithMetrics(m))
}

// Close releases the store and writes the metrics textfile when configured.
func (a *app) Close() error {
	for _, c := range a.closers {
		c()
	}
	if path := a.cfg.Metrics.Textfile; path != "" {
		return prometheus.WriteTextfile(path, a.registry)
	}
	return nil
}

// load returns the stored calendar, or an empty one when nothing was set yet.
func (a *app) load(ctx context.Context, id uuid.UUID) (*calendar.Calendar, error) {
	c, err := a.repo.Get(ctx, id)
	if errors.Is(err, es.ErrAggregateNotFound) {
		a.log.Warn("calendar has no non-trading days, only weekends are closed")
		return calendar.New(id), nil
	}
	return c, err
}

// run opens the app, runs fn and maps the outcome to an exit status.
func run(ctx context.Context, g *globals, fn func(a *app) error) subcommands.ExitStatus {
	a, err := openApp(ctx, g)
	if err != nil {
		fmt.Fprintln(g.errOut, err)
		return subcommands.ExitFailure
	}
	err = fn(a)
	if cerr := a.Close(); cerr != nil {
		a.log.Error("failed to close", slog.Any("error", cerr))
	}
	if err != nil {
		fmt.Fprintln(g.errOut, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
