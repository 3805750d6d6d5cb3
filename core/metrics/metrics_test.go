package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorder struct{ values []float64 }

func (r *recorder) Observe(v float64) { r.values = append(r.values, v) }

func TestNewTimer(t *testing.T) {
	r := &recorder{}
	timer := NewTimer(r)
	time.Sleep(5 * time.Millisecond)
	timer.ObserveDuration()

	require.Len(t, r.values, 1)
	require.GreaterOrEqual(t, r.values[0], 0.005)
}

func TestNop(t *testing.T) {
	NopCounter().Inc()
	NopCounter().Add(2)
	NopHistogram().Observe(1)
	NopTimer().ObserveDuration()
}
