// Package budget implements the two-level memory ledger gating asset
// loads: a global byte ceiling plus independent named category
// sub-budgets (e.g. "texture" capped at 40% of total).
//
// All allocation calls are non-blocking and fail closed: a request that
// would exceed either ledger is rejected with no side effect.
package budget

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

type category struct {
	limit int64
	used  int64
}

// Budget tracks global and per-category byte usage against ceilings.
type Budget struct {
	total int64
	sem   *semaphore.Weighted // nil if unlimited

	used atomic.Int64
	peak atomic.Int64

	allocations atomic.Int64
	rejections  atomic.Int64

	mu         sync.Mutex
	categories map[string]*category
}

// New creates a budget with the given total ceiling in bytes.
// If total is 0 the budget is unlimited (tracking only).
func New(total int64) *Budget {
	b := &Budget{
		total:      total,
		categories: make(map[string]*category),
	}
	if total > 0 {
		b.sem = semaphore.NewWeighted(total)
	}
	return b
}

// SetCategoryLimit configures a sub-budget for a named category.
// Allocations against the category must fit both the category limit
// and the global ceiling. A limit of 0 removes the sub-budget.
func (b *Budget) SetCategoryLimit(name string, limit int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 {
		if c, ok := b.categories[name]; ok && c.used == 0 {
			delete(b.categories, name)
		} else if ok {
			c.limit = 0 // keep usage tracking, drop enforcement
		}
		return
	}
	if c, ok := b.categories[name]; ok {
		c.limit = limit
		return
	}
	b.categories[name] = &category{limit: limit}
}

// CanAllocate reports whether size bytes would fit the global ceiling
// and the category sub-budget (if one is configured for name).
func (b *Budget) CanAllocate(name string, size int64) bool {
	if size <= 0 {
		return true
	}
	if b.total > 0 && b.used.Load()+size > b.total {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.categories[name]; ok && c.limit > 0 && c.used+size > c.limit {
		return false
	}
	return true
}

// TryAllocate reserves size bytes against the category and the global
// ceiling. Both ledgers are updated together, or neither on rejection.
func (b *Budget) TryAllocate(name string, size int64) bool {
	if size <= 0 {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c, hasCategory := b.categories[name]
	if hasCategory && c.limit > 0 && c.used+size > c.limit {
		b.rejections.Add(1)
		return false
	}

	if b.sem != nil && !b.sem.TryAcquire(size) {
		b.rejections.Add(1)
		return false
	}

	if hasCategory {
		c.used += size
	}
	used := b.used.Add(size)
	for {
		peak := b.peak.Load()
		if used <= peak || b.peak.CompareAndSwap(peak, used) {
			break
		}
	}
	b.allocations.Add(1)
	return true
}

// Release returns size bytes to both ledgers. Releases are floored at
// zero so accounting bugs cannot underflow usage.
func (b *Budget) Release(name string, size int64) {
	if size <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.categories[name]; ok {
		c.used -= size
		if c.used < 0 {
			c.used = 0
		}
	}

	if cur := b.used.Load(); size > cur {
		size = cur
	}
	if size <= 0 {
		return
	}
	if b.sem != nil {
		b.sem.Release(size)
	}
	b.used.Add(-size)
}

// Used returns the globally allocated byte count.
func (b *Budget) Used() int64 { return b.used.Load() }

// Total returns the global ceiling (0 = unlimited).
func (b *Budget) Total() int64 { return b.total }

// Peak returns the highest usage observed.
func (b *Budget) Peak() int64 { return b.peak.Load() }

// Allocations returns the number of successful allocations.
func (b *Budget) Allocations() int64 { return b.allocations.Load() }

// Rejections returns the number of rejected allocations.
func (b *Budget) Rejections() int64 { return b.rejections.Load() }

// CategoryUsed returns the bytes allocated against a category.
func (b *Budget) CategoryUsed(name string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.categories[name]; ok {
		return c.used
	}
	return 0
}

// CategoryLimit returns the configured limit for a category
// (0 if none).
func (b *Budget) CategoryLimit(name string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.categories[name]; ok {
		return c.limit
	}
	return 0
}
