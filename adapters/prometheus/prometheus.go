// Package prometheus implements the es.ESMetrics interface on top of the
// Prometheus client and can dump a registry in textfile collector format for
// short lived commands.
package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "folio"

// Default histogram buckets for latency metrics (in seconds).
var defaultBuckets = []float64{
	.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5,
}

// WriteTextfile writes all metrics gathered by g to path, replacing the file
// atomically. node_exporter picks such files up with its textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
