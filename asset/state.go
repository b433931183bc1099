package asset

// State is the lifecycle state of a tracked asset.
//
// The legal flow is
//
//	Unloaded → Queued → Loading → {Loaded | Failed}
//	Loaded → Expired → Unloading → Unloaded
//	Loaded → Unloading → Unloaded
//
// plus a defensive "any → Failed" transition taken when a load phase
// aborts unrecoverably.
type State int32

const (
	// StateUnloaded means no content is held for the asset.
	StateUnloaded State = iota
	// StateQueued means a load request is waiting in the priority queue.
	StateQueued
	// StateLoading means a worker is materializing the asset.
	StateLoading
	// StateLoaded means content is resident and usable.
	StateLoaded
	// StateFailed means the last load attempt failed; no memory is held.
	StateFailed
	// StateUnloading means content is being torn down.
	StateUnloading
	// StateExpired marks an asset selected for eviction whose memory has
	// not been reclaimed yet.
	StateExpired
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateQueued:
		return "queued"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	case StateUnloading:
		return "unloading"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// CanTransition reports whether moving from s to next follows the
// lifecycle state machine. Any state may move to Failed.
func (s State) CanTransition(next State) bool {
	if next == StateFailed {
		return true
	}
	switch s {
	case StateUnloaded:
		return next == StateQueued || next == StateLoading
	case StateQueued:
		return next == StateLoading || next == StateUnloaded
	case StateLoading:
		return next == StateLoaded
	case StateLoaded:
		return next == StateExpired || next == StateUnloading
	case StateFailed:
		return next == StateQueued || next == StateLoading || next == StateUnloaded
	case StateUnloading:
		return next == StateUnloaded
	case StateExpired:
		return next == StateUnloading
	default:
		return false
	}
}
