package streamgo

import (
	"sync/atomic"

	"github.com/hupe1980/streamgo/asset"
)

// Handle is a counted reference to a registered asset. While at least
// one handle is open the asset is pinned: it will not be evicted and
// Unload refuses to tear it down.
//
// Handles are acquired from the manager (Load, LoadAsync, futures) and
// duplicated with Retain. Every acquired or retained handle must be
// closed exactly once; Close is idempotent per handle value.
//
// A handle stays usable across the asset's lifecycle: State reports
// progress for pending loads and IsValid turns false if the asset is
// unloaded or fails.
type Handle struct {
	e    *entry
	done *atomic.Bool
}

func newHandle(e *entry) Handle {
	e.refs.Add(1)
	return Handle{e: e, done: new(atomic.Bool)}
}

// ID returns the asset id. Empty for the zero Handle.
func (h Handle) ID() string {
	if h.e == nil {
		return ""
	}
	return h.e.id
}

// State returns the asset's lifecycle state. Queued and Loading
// indicate a pending load; callers that only need a tri-state view can
// treat both as "pending".
func (h Handle) State() asset.State {
	if h.e == nil {
		return asset.StateUnloaded
	}
	return asset.State(h.e.state.Load())
}

// IsValid reports whether the handle points at a registered asset with
// resident content.
func (h Handle) IsValid() bool {
	return h.e != nil && asset.State(h.e.state.Load()) == asset.StateLoaded && !h.done.Load()
}

// IsLoaded reports whether the asset's content is resident, ignoring
// whether this particular handle is still open.
func (h Handle) IsLoaded() bool {
	return h.e != nil && asset.State(h.e.state.Load()) == asset.StateLoaded
}

// Asset returns the loaded content, or (nil, false) while the asset is
// not resident. The returned value must only be used while the handle
// remains open.
func (h Handle) Asset() (asset.Asset, bool) {
	if !h.IsValid() {
		return nil, false
	}
	box := h.e.content.Load()
	if box == nil || box.a == nil {
		return nil, false
	}
	return box.a, true
}

// Retain duplicates the handle, adding one reference. The new handle
// must be closed independently.
func (h Handle) Retain() Handle {
	if h.e == nil || h.done.Load() {
		return Handle{}
	}
	return newHandle(h.e)
}

// Close releases the reference. Closing an already-closed or zero
// handle is a no-op.
func (h Handle) Close() {
	if h.e == nil || !h.done.CompareAndSwap(false, true) {
		return
	}
	h.e.refs.Add(-1)
}
