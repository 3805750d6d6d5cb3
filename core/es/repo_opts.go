package es

import (
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IDGenerator generates envelope ids.
type IDGenerator func() string

// DefaultIDGenerator returns the nanoid based generator.
func DefaultIDGenerator() IDGenerator {
	return func() string { return gonanoid.Must() }
}

type (
	repoOpts struct {
		log         *slog.Logger
		metrics     ESMetrics
		cacheSize   int
		cacheTTL    time.Duration
		idGenerator IDGenerator
		clock       func() time.Time
	}

	repoWithTransactionOpts struct {
		create   bool
		useCache bool
	}
)

type (
	RepositoryOption      interface{ applyToRepository(*repoOpts) }
	WithTransactionOption interface {
		applyToWithTransactionOptions(*repoWithTransactionOpts)
	}

	RepoCacheOption struct {
		size int
		ttl  time.Duration
	}
	RepoIDGeneratorOption valueOption[IDGenerator]
	RepoClockOption       valueOption[func() time.Time]
	RepoCreateOption      valueOption[bool]
	RepoUseCacheOption    valueOption[bool]
)

// WithRepoCacheLRU keeps up to size aggregates between transactions.
// A ttl of zero keeps them until evicted.
func WithRepoCacheLRU(size int, ttl time.Duration) RepoCacheOption {
	return RepoCacheOption{size: size, ttl: ttl}
}

// WithIDGenerator sets a custom generator for envelope ids.
func WithIDGenerator(gen IDGenerator) RepoIDGeneratorOption {
	return RepoIDGeneratorOption{v: gen}
}

// WithClock sets the time source for envelope timestamps.
func WithClock(now func() time.Time) RepoClockOption { return RepoClockOption{v: now} }

// WithCreate makes WithTransaction start from a blank aggregate when the id
// is unknown.
func WithCreate() RepoCreateOption { return RepoCreateOption{v: true} }

// WithUseCache toggles the transaction cache for one call.
func WithUseCache(useCache bool) RepoUseCacheOption { return RepoUseCacheOption{v: useCache} }

// === repo ==

func (o LogOption) applyToRepository(options *repoOpts)       { options.log = o.v }
func (o ESMetricsOption) applyToRepository(options *repoOpts) { options.metrics = o.v }
func (o RepoCacheOption) applyToRepository(options *repoOpts) {
	options.cacheSize, options.cacheTTL = o.size, o.ttl
}
func (o RepoIDGeneratorOption) applyToRepository(options *repoOpts) { options.idGenerator = o.v }
func (o RepoClockOption) applyToRepository(options *repoOpts)       { options.clock = o.v }

func newRepoOpts(opts ...RepositoryOption) repoOpts {
	var options = repoOpts{
		log:         slog.Default(),
		metrics:     NopESMetrics(),
		idGenerator: DefaultIDGenerator(),
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt.applyToRepository(&options)
	}
	return options
}

// === withTransaction ==

func (o RepoCreateOption) applyToWithTransactionOptions(options *repoWithTransactionOpts) {
	options.create = o.v
}
func (o RepoUseCacheOption) applyToWithTransactionOptions(options *repoWithTransactionOpts) {
	options.useCache = o.v
}

func newWithTransactionOptions(opts ...WithTransactionOption) repoWithTransactionOpts {
	options := repoWithTransactionOpts{useCache: true}
	for _, opt := range opts {
		opt.applyToWithTransactionOptions(&options)
	}
	return options
}
