package es

import "github.com/codewandler/folio-go/core/metrics"

// ESMetrics instruments stores and repositories. Labels are the aggregate
// type or store collection. Implementations must be safe for concurrent use.
type ESMetrics interface {
	// Store operations
	StoreLoadDuration(aggType string) metrics.Timer
	StoreAppendDuration(aggType string) metrics.Timer

	// Repository operations
	RepoLoadDuration(aggType string) metrics.Timer
	RepoSaveDuration(aggType string) metrics.Timer
	EventsAppended(aggType string, count int)
	EventsReplayed(aggType string, count int)
	ConcurrencyConflict(aggType string)

	// Transaction cache
	CacheHit(aggType string)
	CacheMiss(aggType string)
}

type nopESMetrics struct{}

func (nopESMetrics) StoreLoadDuration(string) metrics.Timer   { return metrics.NopTimer() }
func (nopESMetrics) StoreAppendDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopESMetrics) RepoLoadDuration(string) metrics.Timer    { return metrics.NopTimer() }
func (nopESMetrics) RepoSaveDuration(string) metrics.Timer    { return metrics.NopTimer() }
func (nopESMetrics) EventsAppended(string, int)               {}
func (nopESMetrics) EventsReplayed(string, int)               {}
func (nopESMetrics) ConcurrencyConflict(string)               {}
func (nopESMetrics) CacheHit(string)                          {}
func (nopESMetrics) CacheMiss(string)                         {}

// NopESMetrics returns a no-op ESMetrics implementation.
func NopESMetrics() ESMetrics { return nopESMetrics{} }
