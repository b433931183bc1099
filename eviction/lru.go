package eviction

import (
	"sort"
	"sync"
	"time"
)

// LRU is the default eviction policy: oldest-accessed assets go first.
//
// Selection is a greedy prefix over candidates sorted by last access
// ascending — O(n log n) and deterministic, not a minimum-cost
// knapsack. Predictable "oldest goes first" behavior is worth more
// here than optimality.
type LRU struct {
	mu       sync.Mutex
	accessed map[string]time.Time
}

// NewLRU creates an LRU policy.
func NewLRU() *LRU {
	return &LRU{
		accessed: make(map[string]time.Time),
	}
}

// SelectForEviction implements Policy.
func (p *LRU) SelectForEviction(candidates []Candidate, target int64) []string {
	if target <= 0 || len(candidates) == 0 {
		return nil
	}

	p.mu.Lock()
	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.Unloadable {
			continue
		}
		// Prefer our own access table; fall back to the manager's view.
		if at, ok := p.accessed[c.ID]; ok {
			c.LastAccess = at
		}
		eligible = append(eligible, c)
	}
	p.mu.Unlock()

	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].LastAccess.Before(eligible[j].LastAccess)
	})

	var selected []string
	var freed int64
	for _, c := range eligible {
		if freed >= target {
			break
		}
		selected = append(selected, c.ID)
		freed += c.Memory
	}
	return selected
}

// OnAssetAccessed implements Policy.
func (p *LRU) OnAssetAccessed(id string, at time.Time) {
	p.mu.Lock()
	p.accessed[id] = at
	p.mu.Unlock()
}

// OnAssetLoaded implements Policy.
func (p *LRU) OnAssetLoaded(id string, at time.Time) {
	p.mu.Lock()
	p.accessed[id] = at
	p.mu.Unlock()
}

// OnAssetUnloaded implements Policy.
func (p *LRU) OnAssetUnloaded(id string) {
	p.mu.Lock()
	delete(p.accessed, id)
	p.mu.Unlock()
}
