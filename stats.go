package streamgo

import "time"

// WorkerStats is a snapshot of one loading worker's counters.
type WorkerStats struct {
	// Processed is the number of requests the worker completed,
	// successfully or not.
	Processed int64
	// Failed is the number of requests that ended in error.
	Failed int64
	// Busy is the cumulative time spent inside the load pipeline.
	Busy time.Duration
	// LastActive is when the worker last finished a request.
	// Zero if it has not processed anything yet.
	LastActive time.Time
}

// Stats is a point-in-time snapshot of the manager.
//
// Counts are taken under the registry lock; counters are atomic reads
// and may trail the counts by in-flight operations.
type Stats struct {
	// RegisteredAssets is the number of known asset ids.
	RegisteredAssets int
	// LoadedAssets is the number of assets with resident content.
	LoadedAssets int
	// QueuedAssets is the number of assets waiting in the load queue.
	QueuedAssets int
	// LoadingAssets is the number of assets being materialized right now.
	LoadingAssets int
	// FailedAssets is the number of assets whose last load attempt failed.
	FailedAssets int

	// QueueDepth is the number of pending requests in the priority queue.
	QueueDepth int

	// MemoryUsed is the allocated byte count against the budget.
	MemoryUsed int64
	// MemoryBudget is the configured ceiling (0 = unlimited).
	MemoryBudget int64
	// MemoryPeak is the highest usage observed.
	MemoryPeak int64

	// Loads is the number of completed load attempts.
	Loads int64
	// LoadFailures is the number of failed load attempts.
	LoadFailures int64
	// AvgLoadTime is the mean duration of completed loads.
	AvgLoadTime time.Duration
	// StalledLoads counts loads that exceeded the advisory load timeout.
	StalledLoads int64

	// Evictions is the number of assets unloaded by memory pressure.
	Evictions int64

	// CacheHitRate is the hot-asset cache hit rate in [0,1].
	CacheHitRate float64

	// Workers holds per-worker counters, indexed by worker number.
	Workers []WorkerStats
}
