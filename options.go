package pathgo

import (
	"log/slog"
	"time"

	"github.com/hupe1980/pathgo/pace"
)

// DefaultPollInterval is the sleep granularity of Wait's polling loop. It is
// a responsiveness tunable, not a correctness constant; override it with
// WithPollInterval.
const DefaultPollInterval = 25 * time.Millisecond

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	streamCapacity   int
	batchSize        int
	snapshotEvery    int
	pollInterval     time.Duration
	renderInterval   time.Duration
	pace             pace.Config
}

// Option configures Pathgo constructor behavior.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pathgo.NewJSONLogger(slog.LevelInfo)
//	pg, _ := pathgo.New(g, pathgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pathgo.BasicMetricsCollector{}
//	pg, _ := pathgo.New(g, pathgo.WithMetricsCollector(metrics))
//	// ... route ...
//	stats := metrics.GetStats()
//	fmt.Printf("Routes: %d, Avg runtime: %dns\n", stats.RouteCount, stats.RouteAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithStreamCapacity sets the event channel capacity for new runs.
// If 0, progress.DefaultStreamCapacity is used. A full buffer applies
// backpressure to the worker rather than growing without bound.
func WithStreamCapacity(n int) Option {
	return func(o *options) {
		o.streamCapacity = n
	}
}

// WithBatchSize sets the default number of expansions per VisitedBatch event.
// Individual routes can override it with RouteBuilder.BatchSize.
func WithBatchSize(n int) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithSnapshotEvery sets the default batch period of frontier and best-path
// snapshots.
func WithSnapshotEvery(n int) Option {
	return func(o *options) {
		o.snapshotEvery = n
	}
}

// WithPollInterval sets the sleep granularity of Wait's polling loop.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithRenderInterval sets the minimum interval between positive ShouldRender
// answers. If 0, progress.DefaultRenderInterval is used.
func WithRenderInterval(d time.Duration) Option {
	return func(o *options) {
		o.renderInterval = d
	}
}

// WithPace sets the base pacing configuration for new runs. Individual
// routes can override the target runtime with RouteBuilder.TargetRuntime or
// the whole configuration with RouteBuilder.Pace.
func WithPace(cfg pace.Config) Option {
	return func(o *options) {
		o.pace = cfg
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		pollInterval:     DefaultPollInterval,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
