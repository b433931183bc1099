package streamgo

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
//	    loadCounter   prometheus.Counter
//	    loadHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordLoad(id string, size int64, duration time.Duration, err error) {
//	    p.loadCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordLoad is called after each load attempt.
	// size is the resident size on success, duration is the total time
	// taken, err is nil if successful.
	RecordLoad(id string, size int64, duration time.Duration, err error)

	// RecordUnload is called after each unload. evicted is true when the
	// unload was driven by memory pressure rather than an explicit call.
	RecordUnload(id string, freed int64, evicted bool)

	// RecordEviction is called after each eviction pass.
	// unloaded is the number of assets reclaimed, freed the bytes
	// returned to the budget.
	RecordEviction(unloaded int, freed int64)

	// RecordQueueDepth is called periodically from Update with the
	// current queue length.
	RecordQueueDepth(depth int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(string, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordUnload(string, int64, bool)               {}
func (NoopMetricsCollector) RecordEviction(int, int64)                      {}
func (NoopMetricsCollector) RecordQueueDepth(int)                           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadTotalNanos atomic.Int64
	LoadBytes      atomic.Int64
	UnloadCount    atomic.Int64
	UnloadBytes    atomic.Int64
	EvictionPasses atomic.Int64
	EvictedAssets  atomic.Int64
	EvictedBytes   atomic.Int64
	MaxQueueDepth  atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(id string, size int64, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(size)
}

// RecordUnload implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUnload(id string, freed int64, evicted bool) {
	b.UnloadCount.Add(1)
	b.UnloadBytes.Add(freed)
}

// RecordEviction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEviction(unloaded int, freed int64) {
	b.EvictionPasses.Add(1)
	b.EvictedAssets.Add(int64(unloaded))
	b.EvictedBytes.Add(freed)
}

// RecordQueueDepth implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQueueDepth(depth int) {
	for {
		max := b.MaxQueueDepth.Load()
		if int64(depth) <= max || b.MaxQueueDepth.CompareAndSwap(max, int64(depth)) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadAvgNanos:   b.getAvgLoadNanos(),
		LoadBytes:      b.LoadBytes.Load(),
		UnloadCount:    b.UnloadCount.Load(),
		UnloadBytes:    b.UnloadBytes.Load(),
		EvictionPasses: b.EvictionPasses.Load(),
		EvictedAssets:  b.EvictedAssets.Load(),
		EvictedBytes:   b.EvictedBytes.Load(),
		MaxQueueDepth:  b.MaxQueueDepth.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgLoadNanos() int64 {
	count := b.LoadCount.Load()
	if count == 0 {
		return 0
	}
	return b.LoadTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount      int64
	LoadErrors     int64
	LoadAvgNanos   int64
	LoadBytes      int64
	UnloadCount    int64
	UnloadBytes    int64
	EvictionPasses int64
	EvictedAssets  int64
	EvictedBytes   int64
	MaxQueueDepth  int64
}
