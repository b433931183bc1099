package asset

// Asset is the capability set the streaming core requires from loaded
// content. Concrete types (textures, meshes, audio buffers, ...) are
// produced by loaders and treated opaquely by the core.
//
// Implementations need not be safe for concurrent mutation; the manager
// hands an Asset to at most one loader at a time and callers observe it
// through handles only while it is loaded.
type Asset interface {
	// Meta returns the metadata the asset was loaded from.
	Meta() *Metadata

	// MemoryUsage returns the resident size of the content in bytes.
	// The manager finalizes budget accounting from this value after a
	// successful load.
	MemoryUsage() int64

	// Unload releases the content. Called exactly once per load, on
	// explicit unload or eviction. After Unload the asset must not be
	// used again.
	Unload()
}

// Raw is a byte-payload Asset. The built-in loaders produce Raw assets;
// engines with typed content (GPU textures, audio buffers) implement
// Asset themselves.
type Raw struct {
	meta Metadata
	data []byte
}

// NewRaw creates a Raw asset holding data.
func NewRaw(meta Metadata, data []byte) *Raw {
	return &Raw{meta: meta, data: data}
}

// Meta implements Asset.
func (r *Raw) Meta() *Metadata { return &r.meta }

// MemoryUsage implements Asset.
func (r *Raw) MemoryUsage() int64 { return int64(len(r.data)) }

// Unload implements Asset.
func (r *Raw) Unload() { r.data = nil }

// Bytes returns the payload. The slice must be treated as read-only
// and is valid only while the asset is loaded.
func (r *Raw) Bytes() []byte { return r.data }
