package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/streamgo/asset"
	"github.com/hupe1980/streamgo/blobstore"
)

// zstd decoders are reused across loads; creating one per payload is
// measurably expensive.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil)
		return dec
	},
}

// Compressed transparently decompresses ".zst"/".zstd" (zstandard) and
// ".lz4" payloads into asset.Raw assets. Memory accounting uses the
// decompressed size, which is what actually stays resident.
type Compressed struct{}

// NewCompressed creates a compressed-payload loader.
func NewCompressed() *Compressed { return &Compressed{} }

// CanLoad implements Loader.
func (l *Compressed) CanLoad(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".zst", ".zstd", ".lz4":
		return true
	default:
		return false
	}
}

// Load implements Loader.
func (l *Compressed) Load(ctx context.Context, meta asset.Metadata, blob blobstore.Blob) (asset.Asset, error) {
	compressed, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, err
	}

	payloadPath := meta.PathForLOD(meta.CurrentLOD)
	var data []byte
	switch strings.ToLower(path.Ext(payloadPath)) {
	case ".zst", ".zstd":
		dec, _ := zstdDecoderPool.Get().(*zstd.Decoder)
		data, err = dec.DecodeAll(compressed, nil)
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("loader: zstd decompress %s: %w", meta.ID, err)
		}
	case ".lz4":
		data, err = io.ReadAll(lz4.NewReader(bytes.NewReader(compressed)))
		if err != nil {
			return nil, fmt.Errorf("loader: lz4 decompress %s: %w", meta.ID, err)
		}
	default:
		return nil, fmt.Errorf("loader: %s: unsupported compressed payload %q", meta.ID, payloadPath)
	}

	return asset.NewRaw(meta, data), nil
}
