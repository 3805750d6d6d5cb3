// Package metrics holds backend neutral instrumentation interfaces so the
// core packages stay decoupled from Prometheus.
package metrics

import "time"

// Counter is a monotonically increasing metric.
type Counter interface {
	Inc()
	// Add increments the counter by delta, which must be >= 0.
	Add(delta float64)
}

// Histogram samples observations.
type Histogram interface {
	Observe(value float64)
}

// Timer measures one operation. Call ObserveDuration when it completes:
//
//	defer m.RepoLoadDuration("calendar").ObserveDuration()
type Timer interface {
	ObserveDuration()
}

type histogramTimer struct {
	h     Histogram
	start time.Time
}

func (t histogramTimer) ObserveDuration() { t.h.Observe(time.Since(t.start).Seconds()) }

// NewTimer starts a timer recording seconds into h.
func NewTimer(h Histogram) Timer { return histogramTimer{h: h, start: time.Now()} }
