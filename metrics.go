package pathgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    routeCounter   prometheus.Counter
//	    routeHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordRoute(duration time.Duration, err error) {
//	    p.routeCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordRoute is called once per run when the worker exits.
	// duration is the wall-clock runtime, err is nil unless the run hit a
	// fatal input error.
	RecordRoute(duration time.Duration, err error)

	// RecordBatch is called for each VisitedBatch the consumer folds.
	// nodes is the number of node IDs in the batch.
	RecordBatch(nodes int)

	// RecordPoll is called after each poll operation.
	// timedOut reports whether the poll returned without an event.
	RecordPoll(timedOut bool)

	// RecordArtifact is called after each artifact save.
	RecordArtifact(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRoute(time.Duration, error)    {}
func (NoopMetricsCollector) RecordBatch(int)                     {}
func (NoopMetricsCollector) RecordPoll(bool)                     {}
func (NoopMetricsCollector) RecordArtifact(time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RouteCount         atomic.Int64
	RouteErrors        atomic.Int64
	RouteTotalNanos    atomic.Int64
	BatchCount         atomic.Int64
	BatchNodes         atomic.Int64
	PollCount          atomic.Int64
	PollTimeouts       atomic.Int64
	ArtifactCount      atomic.Int64
	ArtifactErrors     atomic.Int64
	ArtifactTotalNanos atomic.Int64
}

// RecordRoute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRoute(duration time.Duration, err error) {
	b.RouteCount.Add(1)
	b.RouteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RouteErrors.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(nodes int) {
	b.BatchCount.Add(1)
	b.BatchNodes.Add(int64(nodes))
}

// RecordPoll implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPoll(timedOut bool) {
	b.PollCount.Add(1)
	if timedOut {
		b.PollTimeouts.Add(1)
	}
}

// RecordArtifact implements MetricsCollector.
func (b *BasicMetricsCollector) RecordArtifact(duration time.Duration, err error) {
	b.ArtifactCount.Add(1)
	b.ArtifactTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ArtifactErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RouteCount:     b.RouteCount.Load(),
		RouteErrors:    b.RouteErrors.Load(),
		RouteAvgNanos:  b.getAvgRouteNanos(),
		BatchCount:     b.BatchCount.Load(),
		BatchNodes:     b.BatchNodes.Load(),
		PollCount:      b.PollCount.Load(),
		PollTimeouts:   b.PollTimeouts.Load(),
		ArtifactCount:  b.ArtifactCount.Load(),
		ArtifactErrors: b.ArtifactErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgRouteNanos() int64 {
	count := b.RouteCount.Load()
	if count == 0 {
		return 0
	}
	return b.RouteTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RouteCount     int64
	RouteErrors    int64
	RouteAvgNanos  int64
	BatchCount     int64
	BatchNodes     int64
	PollCount      int64
	PollTimeouts   int64
	ArtifactCount  int64
	ArtifactErrors int64
}
