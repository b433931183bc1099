package streamgo

import (
	"log/slog"
	"time"

	"github.com/hupe1980/streamgo/eviction"
)

const (
	// DefaultWorkers is the number of loading workers when WithWorkers
	// is not given.
	DefaultWorkers = 4

	// DefaultMemoryBudget is the global memory ceiling when
	// WithMemoryBudget is not given (512 MiB).
	DefaultMemoryBudget = 512 << 20

	// DefaultCacheSize bounds the hot-asset tracking cache.
	DefaultCacheSize = 1024

	// DefaultEvictionTrigger is the budget-usage fraction above which
	// Update starts an eviction pass.
	DefaultEvictionTrigger = 0.9

	// DefaultEvictionTarget is the fraction of used memory an automatic
	// eviction pass tries to reclaim.
	DefaultEvictionTarget = 0.3
)

type options struct {
	workers          int
	memoryBudget     int64
	categoryLimits   map[string]int64
	cacheSize        int
	policy           eviction.Policy
	evictionTrigger  float64
	evictionTarget   float64
	ioBytesPerSecond int64
	loadTimeout      time.Duration
	metricsCollector MetricsCollector
	logger           *Logger
	now              func() time.Time
}

// Option configures Manager constructor behavior.
type Option func(*options)

// WithWorkers configures the number of concurrent loading workers.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.workers = n
		}
	}
}

// WithMemoryBudget configures the global memory ceiling in bytes.
// A budget of 0 disables enforcement (usage is still tracked).
func WithMemoryBudget(bytes int64) Option {
	return func(o *options) {
		if bytes >= 0 {
			o.memoryBudget = bytes
		}
	}
}

// WithCategoryBudget caps one asset type (metadata Type field, e.g.
// "texture") at a byte sub-budget inside the global ceiling. May be
// given multiple times for different categories.
func WithCategoryBudget(category string, bytes int64) Option {
	return func(o *options) {
		if o.categoryLimits == nil {
			o.categoryLimits = make(map[string]int64)
		}
		o.categoryLimits[category] = bytes
	}
}

// WithCacheSize bounds the hot-asset tracking cache to n entries.
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithEvictionPolicy configures the policy selecting assets to unload
// under memory pressure. Defaults to eviction.NewLRU().
func WithEvictionPolicy(p eviction.Policy) Option {
	return func(o *options) {
		if p != nil {
			o.policy = p
		}
	}
}

// WithEvictionTrigger sets the budget-usage fraction (0..1] above which
// Update starts an automatic eviction pass.
func WithEvictionTrigger(frac float64) Option {
	return func(o *options) {
		if frac > 0 && frac <= 1 {
			o.evictionTrigger = frac
		}
	}
}

// WithEvictionTarget sets the fraction of used memory an automatic
// eviction pass tries to reclaim.
func WithEvictionTarget(frac float64) Option {
	return func(o *options) {
		if frac > 0 && frac <= 1 {
			o.evictionTarget = frac
		}
	}
}

// WithIOLimit throttles payload reads to the given bytes per second
// across all workers. 0 disables throttling.
func WithIOLimit(bytesPerSecond int64) Option {
	return func(o *options) {
		if bytesPerSecond >= 0 {
			o.ioBytesPerSecond = bytesPerSecond
		}
	}
}

// WithLoadTimeout sets an advisory duration after which a load counts
// as stalled in the statistics. Loads are never preempted; the timeout
// is reporting-only.
func WithLoadTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.loadTimeout = d
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &streamgo.BasicMetricsCollector{}
//	m, _ := streamgo.New(store, streamgo.WithMetricsCollector(metrics))
//	// ... use m ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := streamgo.NewJSONLogger(slog.LevelInfo)
//	m, _ := streamgo.New(store, streamgo.WithLogger(logger))
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

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		workers:          DefaultWorkers,
		memoryBudget:     DefaultMemoryBudget,
		cacheSize:        DefaultCacheSize,
		evictionTrigger:  DefaultEvictionTrigger,
		evictionTarget:   DefaultEvictionTarget,
		policy:           eviction.NewLRU(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		now:              time.Now,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
