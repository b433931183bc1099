// Package eviction defines the pluggable policy deciding which loaded
// assets to unload when the memory budget runs hot.
//
// Policies only select; the streaming manager performs the actual
// unloads and releases the memory. A policy must never select an asset
// whose Unloadable flag is false (outstanding references).
package eviction

import "time"

// Candidate describes one loaded asset the policy may select.
type Candidate struct {
	// ID is the asset id.
	ID string
	// Memory is the asset's resident size in bytes.
	Memory int64
	// LastAccess is the manager's view of the last touch. Policies
	// keeping their own access table may ignore it.
	LastAccess time.Time
	// Unloadable is true when the asset holds no outstanding
	// references. Assets with Unloadable == false must never be
	// selected.
	Unloadable bool
}

// Policy selects assets for unloading.
//
// The notification methods let a policy maintain its own bookkeeping
// independent of the manager's per-asset timestamps. They are called
// outside the manager's locks; implementations must be safe for
// concurrent use.
type Policy interface {
	// SelectForEviction returns ids of candidates to unload, in
	// unload order, whose cumulative Memory meets or exceeds target.
	// Returns fewer (possibly none) when the unloadable set cannot
	// cover target.
	SelectForEviction(candidates []Candidate, target int64) []string

	// OnAssetAccessed records a touch.
	OnAssetAccessed(id string, at time.Time)
	// OnAssetLoaded records a load completion.
	OnAssetLoaded(id string, at time.Time)
	// OnAssetUnloaded drops bookkeeping for an unloaded asset.
	OnAssetUnloaded(id string)
}
