package lloyd

import (
	"math"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting clustering metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    iterations prometheus.Counter
//	    inertia    prometheus.Gauge
//	}
//
//	func (p *PrometheusCollector) RecordIteration(i int, inertia float64, moved int, d time.Duration) {
//	    p.iterations.Inc()
//	    p.inertia.Set(inertia)
//	}
type MetricsCollector interface {
	// RecordIteration is called after each assign/update cycle.
	// inertia is the within-cluster sum of squares against the updated
	// centroids, moved is the number of points that changed cluster.
	RecordIteration(iteration int, inertia float64, moved int, duration time.Duration)

	// RecordRun is called once when a run reaches a terminal state.
	RecordRun(iterations int, converged bool, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordIteration(int, float64, int, time.Duration) {}
func (NoopMetricsCollector) RecordRun(int, bool, time.Duration, error)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	IterationCount      atomic.Int64
	IterationTotalNanos atomic.Int64
	PointsMoved         atomic.Int64
	RunCount            atomic.Int64
	RunConverged        atomic.Int64
	RunErrors           atomic.Int64
	RunTotalNanos       atomic.Int64
	lastInertia         atomic.Uint64
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(iteration int, inertia float64, moved int, duration time.Duration) {
	b.IterationCount.Add(1)
	b.IterationTotalNanos.Add(duration.Nanoseconds())
	b.PointsMoved.Add(int64(moved))
	b.lastInertia.Store(math.Float64bits(inertia))
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(iterations int, converged bool, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if converged {
		b.RunConverged.Add(1)
	}
	if err != nil {
		b.RunErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		IterationCount:    b.IterationCount.Load(),
		IterationAvgNanos: avg(b.IterationTotalNanos.Load(), b.IterationCount.Load()),
		PointsMoved:       b.PointsMoved.Load(),
		LastInertia:       math.Float64frombits(b.lastInertia.Load()),
		RunCount:          b.RunCount.Load(),
		RunConverged:      b.RunConverged.Load(),
		RunErrors:         b.RunErrors.Load(),
		RunAvgNanos:       avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	IterationCount    int64
	IterationAvgNanos int64
	PointsMoved       int64
	LastInertia       float64
	RunCount          int64
	RunConverged      int64
	RunErrors         int64
	RunAvgNanos       int64
}
