package lloyd

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/hupe1980/lloyd/internal/kmeans"
)

const (
	// DefaultEpsilon is the default convergence tolerance.
	DefaultEpsilon = 1e-9

	// DefaultMaxIterations is the default iteration cap.
	DefaultMaxIterations = 300
)

// Rand is the randomness source used to pick the initial centroids.
// *math/rand.Rand satisfies it.
type Rand = kmeans.Rand

type options struct {
	rng              Rand
	seed             int64
	seeded           bool
	epsilon          float64
	maxIterations    int
	workers          int
	initialSnapshot  bool
	logger           *Logger
	metricsCollector MetricsCollector
}

func defaultOptions() options {
	return options{
		epsilon:          DefaultEpsilon,
		maxIterations:    DefaultMaxIterations,
		workers:          1,
		initialSnapshot:  true,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

func (o *options) validate() error {
	if o.epsilon < 0 || math.IsNaN(o.epsilon) || math.IsInf(o.epsilon, 0) {
		return fmt.Errorf("%w: epsilon must be a finite value >= 0, got %v", ErrInvalidOption, o.epsilon)
	}
	if o.maxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", ErrInvalidOption, o.maxIterations)
	}
	if o.workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidOption, o.workers)
	}
	return nil
}

func (o *options) random() Rand {
	if o.rng != nil {
		return o.rng
	}
	seed := o.seed
	if !o.seeded {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Option configures a clustering run.
type Option func(*options)

// WithSeed makes initialization reproducible: two runs with the same seed,
// dataset and k produce identical results and histories.
//
// Without WithSeed or WithRand the seed is taken from the clock.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithRand injects the randomness source used by the initializer.
// It takes precedence over WithSeed.
func WithRand(rng Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithEpsilon sets the convergence tolerance: the run converges once no
// centroid moves further than epsilon (Euclidean) between two iterations.
// Zero demands exact equality.
func WithEpsilon(epsilon float64) Option {
	return func(o *options) {
		o.epsilon = epsilon
	}
}

// WithMaxIterations caps the number of assign/update cycles.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithWorkers spreads the assignment step over n goroutines.
// The assignment produced is identical to the sequential one.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithoutInitialSnapshot skips the iteration-0 snapshot that pairs the
// initial centroids with an all-unassigned vector.
func WithoutInitialSnapshot() Option {
	return func(o *options) {
		o.initialSnapshot = false
	}
}

// WithLogger configures structured logging for the run.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := lloyd.NewJSONLogger(slog.LevelDebug)
//	res, _ := lloyd.Cluster(points, 4, lloyd.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
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

// WithMetricsCollector configures a metrics collector for the run.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &lloyd.BasicMetricsCollector{}
//	res, _ := lloyd.Cluster(points, 4, lloyd.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Iterations: %d, final inertia: %g\n", stats.IterationCount, stats.LastInertia)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}
