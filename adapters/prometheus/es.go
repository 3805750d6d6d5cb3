package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/folio-go/core/es"
	"github.com/codewandler/folio-go/core/metrics"
)

// esMetrics implements es.ESMetrics using Prometheus.
type esMetrics struct {
	// Store metrics
	storeLoadDuration   *prometheus.HistogramVec
	storeAppendDuration *prometheus.HistogramVec

	// Repository metrics
	repoLoadDuration     *prometheus.HistogramVec
	repoSaveDuration     *prometheus.HistogramVec
	eventsAppended       *prometheus.CounterVec
	eventsReplayed       *prometheus.CounterVec
	concurrencyConflicts *prometheus.CounterVec

	// Cache metrics
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
}

func histogram(name, help, label string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "es",
		Name:      name,
		Help:      help,
		Buckets:   defaultBuckets,
	}, []string{label})
}

func counter(name, help, label string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "es",
		Name:      name,
		Help:      help,
	}, []string{label})
}

// NewESMetrics creates the event sourcing metrics and registers them with reg.
// It panics when reg already holds metrics of the same name.
func NewESMetrics(reg prometheus.Registerer) es.ESMetrics {
	m := &esMetrics{
		storeLoadDuration:    histogram("store_load_duration_seconds", "Event store load latency in seconds", "collection"),
		storeAppendDuration:  histogram("store_append_duration_seconds", "Event store append latency in seconds", "collection"),
		repoLoadDuration:     histogram("repo_load_duration_seconds", "Repository load latency in seconds", "aggregate_type"),
		repoSaveDuration:     histogram("repo_save_duration_seconds", "Repository save latency in seconds", "aggregate_type"),
		eventsAppended:       counter("events_appended_total", "Total number of events appended", "aggregate_type"),
		eventsReplayed:       counter("events_replayed_total", "Total number of events replayed while rebuilding aggregates", "aggregate_type"),
		concurrencyConflicts: counter("concurrency_conflicts_total", "Total number of optimistic concurrency failures", "aggregate_type"),
		cacheHits:            counter("cache_hits_total", "Total number of transaction cache hits", "aggregate_type"),
		cacheMisses:          counter("cache_misses_total", "Total number of transaction cache misses", "aggregate_type"),
	}

	reg.MustRegister(
		m.storeLoadDuration,
		m.storeAppendDuration,
		m.repoLoadDuration,
		m.repoSaveDuration,
		m.eventsAppended,
		m.eventsReplayed,
		m.concurrencyConflicts,
		m.cacheHits,
		m.cacheMisses,
	)

	return m
}

func (m *esMetrics) StoreLoadDuration(collection string) metrics.Timer {
	return metrics.NewTimer(m.storeLoadDuration.WithLabelValues(collection))
}

func (m *esMetrics) StoreAppendDuration(collection string) metrics.Timer {
	return metrics.NewTimer(m.storeAppendDuration.WithLabelValues(collection))
}

func (m *esMetrics) RepoLoadDuration(aggType string) metrics.Timer {
	return metrics.NewTimer(m.repoLoadDuration.WithLabelValues(aggType))
}

func (m *esMetrics) RepoSaveDuration(aggType string) metrics.Timer {
	return metrics.NewTimer(m.repoSaveDuration.WithLabelValues(aggType))
}

func (m *esMetrics) EventsAppended(aggType string, count int) {
	m.eventsAppended.WithLabelValues(aggType).Add(float64(count))
}

func (m *esMetrics) EventsReplayed(aggType string, count int) {
	m.eventsReplayed.WithLabelValues(aggType).Add(float64(count))
}

func (m *esMetrics) ConcurrencyConflict(aggType string) {
	m.concurrencyConflicts.WithLabelValues(aggType).Inc()
}

func (m *esMetrics) CacheHit(aggType string) {
	m.cacheHits.WithLabelValues(aggType).Inc()
}

func (m *esMetrics) CacheMiss(aggType string) {
	m.cacheMisses.WithLabelValues(aggType).Inc()
}

var _ es.ESMetrics = (*esMetrics)(nil)
