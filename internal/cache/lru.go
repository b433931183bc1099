package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// LRU is a bounded key→value cache with access bookkeeping and
// hit/miss statistics. Safe for concurrent use.
type LRU[V any] struct {
	mu        sync.Mutex
	maxSize   int
	items     map[string]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[V any] struct {
	key         string
	value       V
	lastAccess  time.Time
	accessCount int64
}

// NewLRU creates a cache bounded to maxSize entries.
// maxSize must be positive.
func NewLRU[V any](maxSize int) *LRU[V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &LRU[V]{
		maxSize:   maxSize,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
	}
}

// Get returns the cached value and refreshes its recency.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.hits.Add(1)
		ent, _ := el.Value.(*entry[V])
		ent.lastAccess = time.Now()
		ent.accessCount++
		c.evictList.MoveToFront(el)
		return ent.value, true
	}

	c.misses.Add(1)
	var zero V
	return zero, false
}

// Put inserts or refreshes a value. When insertion would exceed the
// bound, the single least-recently-accessed entry is evicted first.
func (c *LRU[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent, _ := el.Value.(*entry[V])
		ent.value = value
		ent.lastAccess = time.Now()
		ent.accessCount++
		c.evictList.MoveToFront(el)
		return
	}

	if c.evictList.Len() >= c.maxSize {
		if oldest := c.evictList.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}

	el := c.evictList.PushFront(&entry[V]{
		key:         key,
		value:       value,
		lastAccess:  time.Now(),
		accessCount: 1,
	})
	c.items[key] = el
}

// Remove drops an entry if present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
		return true
	}
	return false
}

// Contains reports presence without refreshing recency or counting a
// hit/miss.
func (c *LRU[V]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

// AccessCount returns how often a key has been touched (0 if absent).
func (c *LRU[V]) AccessCount(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent, _ := el.Value.(*entry[V])
		return ent.accessCount
	}
	return 0
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Clear drops all entries. Statistics are preserved.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.evictList.Init()
}

// Stats returns the raw hit/miss counters.
func (c *LRU[V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// HitRate returns hits/(hits+misses), or 0 before any lookup.
func (c *LRU[V]) HitRate() float64 {
	hits := c.hits.Load()
	total := hits + c.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func (c *LRU[V]) removeElement(el *list.Element) {
	c.evictList.Remove(el)
	ent, _ := el.Value.(*entry[V])
	delete(c.items, ent.key)
}
