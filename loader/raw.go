package loader

import (
	"context"
	"path"
	"strings"

	"github.com/hupe1980/streamgo/asset"
	"github.com/hupe1980/streamgo/blobstore"
)

// typeByExt maps payload extensions to asset type tags for metadata
// extraction. Unknown extensions fall back to "raw".
var typeByExt = map[string]string{
	".png":  "texture",
	".jpg":  "texture",
	".jpeg": "texture",
	".ktx2": "texture",
	".dds":  "texture",
	".ogg":  "audio",
	".wav":  "audio",
	".mp3":  "audio",
	".obj":  "mesh",
	".gltf": "mesh",
	".glb":  "mesh",
}

// Raw is the catch-all loader: it reads the payload verbatim into an
// asset.Raw. Register it last so format-specific loaders win.
type Raw struct{}

// NewRaw creates a raw loader.
func NewRaw() *Raw { return &Raw{} }

// CanLoad implements Loader. Raw accepts everything.
func (l *Raw) CanLoad(string) bool { return true }

// Load implements Loader.
func (l *Raw) Load(ctx context.Context, meta asset.Metadata, blob blobstore.Blob) (asset.Asset, error) {
	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, err
	}
	return asset.NewRaw(meta, data), nil
}

// ExtractMetadata implements MetadataExtractor. The id is the payload
// path, the type is derived from the extension, and the size estimate
// is the stored size.
func (l *Raw) ExtractMetadata(ctx context.Context, store blobstore.Store, p string) (asset.Metadata, error) {
	size, err := store.Stat(ctx, p)
	if err != nil {
		return asset.Metadata{}, err
	}

	typ, ok := typeByExt[strings.ToLower(path.Ext(p))]
	if !ok {
		typ = "raw"
	}

	return asset.Metadata{
		ID:            p,
		Path:          p,
		Type:          typ,
		EstimatedSize: size,
		Priority:      asset.PriorityMedium,
	}, nil
}
