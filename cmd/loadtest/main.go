package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codewandler/folio-go/adapters/nats"
	"github.com/codewandler/folio-go/core/date"
	"github.com/codewandler/folio-go/core/es"
	"github.com/codewandler/folio-go/domain/user"
	"github.com/codewandler/folio-go/internal/config"
	"github.com/codewandler/folio-go/ports/kv"
)

// === Config ===

// NOTE: run nats: docker run --net=host nats:latest -js

var (
	N             = getEnvInt("N", 20_000)
	batchSize     = getEnvInt("B", 1_000)
	configPath    = getEnv("CONFIG", "folio.yaml")
	useCache      = getEnvBool("CACHE", true)
	loadAfterSave = getEnvBool("LOAD_AFTER_SAVE", false)
)

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	return v == "1" || strings.ToLower(v) == "true"
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func main() {
	cfg, err := config.Load(configPath)
	checkErr(err)
	log := cfg.Logger(os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	store, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	events := es.NewEventRegistry()
	user.RegisterEvents(events)

	cacheSize := 0
	if useCache {
		cacheSize = 1_000
	}
	repo := es.NewRepository(store, events, user.Factory(), es.WithLog(log), es.WithRepoCacheLRU(cacheSize, 0))

	fmt.Printf("Backend: %s\n", cfg.Store.Backend)
	fmt.Printf("Cache:   %s\n", strconv.FormatBool(useCache))

	// === START ===

	var (
		id       = uuid.New()
		start    = date.New(2000, 1, 1)
		startAt  = time.Now()
		lastTime = startAt
	)
	checkErr(repo.WithTransaction(ctx, id, func(u *user.User) error {
		return u.Create(start, "loadtest", "Load Test", "load@test.example")
	}, es.WithCreate()))

	for i := 1; i <= N; i++ {
		// one day per change keeps every change in the current period
		err := repo.WithTransaction(ctx, id, func(u *user.User) error {
			return u.ChangeDetails(start.AddDays(i), "Load Test", fmt.Sprintf("user@host-%d.example", i))
		})
		checkErr(err)

		if loadAfterSave {
			_, err = repo.Get(ctx, id)
			checkErr(err)
		}

		if i%100 == 0 {
			print(".")
		}
		if i%batchSize == 0 {
			mu := getMemUsage()
			n := time.Now()
			took := n.Sub(lastTime)
			fmt.Printf(" | %5d events | %6d ms | %6d events/s | (%d / %d) MiB mem (sys) |\n", batchSize, took.Milliseconds(), int(float64(batchSize)/took.Seconds()), mu.Alloc/1024/1024, mu.Sys/1024/1024)
			lastTime = n
		}
	}

	// === stats ===
	println("")
	println("==========================================")

	took := time.Since(startAt)
	runtime.GC()

	u, err := repo.Get(ctx, id)
	checkErr(err)

	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("      version: %d\n", u.GetVersion())
	fmt.Printf("avg. writes/s: %d\n", int(float64(N)/took.Seconds()))
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (es.EventStore, func()) {
	var backing kv.Store
	closeStore := func() {}
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return es.NewInMemoryStore(), closeStore
	case config.BackendFile:
		fs, err := kv.NewFileStore(cfg.Store.File.Dir)
		checkErr(err)
		backing = fs
	case config.BackendNATS:
		ns, err := nats.NewKvStore(ctx, nats.KvConfig{
			Connect: nats.ConnectURL(cfg.Store.NATS.URL),
			Log:     log,
			Bucket:  cfg.Store.NATS.Bucket,
		})
		checkErr(err)
		backing, closeStore = ns, ns.Close
	}
	store, err := es.NewKVStore(backing, "loadtest", es.WithLog(log))
	checkErr(err)
	return store, closeStore
}

// === stats helpers ===

type MemUsage struct {
	Alloc uint64 // bytes allocated and not yet freed (heap)
	Sys   uint64 // total bytes obtained from OS
}

func getMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{Alloc: m.Alloc, Sys: m.Sys}
}

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}
