// Package loader defines how asset payload bytes become usable assets.
//
// A Loader decodes one or more payload formats into asset.Asset
// values. The streaming manager tries registered loaders in
// registration order and uses the first whose CanLoad accepts the
// payload path; register more specific loaders first.
package loader

import (
	"context"

	"github.com/hupe1980/streamgo/asset"
	"github.com/hupe1980/streamgo/blobstore"
)

// Loader decodes payload blobs into assets.
// Implementations must be safe for concurrent use; the manager calls
// Load from multiple workers.
type Loader interface {
	// CanLoad reports whether this loader handles the payload at path.
	CanLoad(path string) bool

	// Load materializes the asset from an open payload blob.
	// meta.CurrentLOD identifies the detail level being loaded; the
	// blob already points at the level's payload.
	Load(ctx context.Context, meta asset.Metadata, blob blobstore.Blob) (asset.Asset, error)
}

// MetadataExtractor is an optional interface for loaders that can
// derive registration metadata from a payload without decoding it.
type MetadataExtractor interface {
	// ExtractMetadata probes the payload at path and returns metadata
	// suitable for registration.
	ExtractMetadata(ctx context.Context, store blobstore.Store, path string) (asset.Metadata, error)
}
