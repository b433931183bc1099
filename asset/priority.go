package asset

// Priority controls scheduling order in the load queue.
// Higher values are serviced first; within one priority band
// requests are serviced in submission order (FIFO).
type Priority int32

const (
	// PriorityBackground is for speculative prefetching. May be starved
	// indefinitely by higher bands; that is the accepted tradeoff.
	PriorityBackground Priority = iota
	// PriorityLow is for assets needed soon but not visible.
	PriorityLow
	// PriorityMedium is the default for registered assets.
	PriorityMedium
	// PriorityHigh is for assets near or entering the view.
	PriorityHigh
	// PriorityCritical is for assets that block presentation.
	PriorityCritical
)

// String returns a human-readable name for the priority.
func (p Priority) String() string {
	switch p {
	case PriorityBackground:
		return "background"
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Clamp bounds p to the valid priority range.
func (p Priority) Clamp() Priority {
	if p < PriorityBackground {
		return PriorityBackground
	}
	if p > PriorityCritical {
		return PriorityCritical
	}
	return p
}

// DistancePriority derives a priority from the distance between an observer
// and the asset. Distances at or inside criticalDistance map to
// PriorityCritical; each doubling beyond it drops one band.
func DistancePriority(distance, criticalDistance float64) Priority {
	if criticalDistance <= 0 {
		return PriorityMedium
	}
	switch {
	case distance <= criticalDistance:
		return PriorityCritical
	case distance <= criticalDistance*2:
		return PriorityHigh
	case distance <= criticalDistance*4:
		return PriorityMedium
	case distance <= criticalDistance*8:
		return PriorityLow
	default:
		return PriorityBackground
	}
}

// VisibilityPriority derives a priority from visibility state.
// Visible assets are critical, frustum-adjacent assets high,
// everything else background.
func VisibilityPriority(visible, inFrustum bool) Priority {
	switch {
	case visible:
		return PriorityCritical
	case inFrustum:
		return PriorityHigh
	default:
		return PriorityBackground
	}
}
