// Package asset defines the core asset model used throughout streamgo.
//
// # Identity & Description
//
//   - Metadata: registered description of a loadable unit (ID, Path, Type,
//     size estimate, priority, LOD ladder, free-form tags)
//   - LOD: one rung of a level-of-detail ladder
//
// # Lifecycle
//
//   - State: the asset lifecycle state machine
//     (Unloaded → Queued → Loading → {Loaded | Failed} → Unloading → Unloaded)
//   - Priority: scheduling priority (Background ... Critical)
//
// # Content
//
//   - Asset: the capability set every loaded asset exposes
//     (Meta, MemoryUsage, Unload)
//   - Raw: a byte-payload implementation used by the built-in loaders
package asset
