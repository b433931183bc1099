package loader

import (
	"bytes"
	"context"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/streamgo/asset"
	"github.com/hupe1980/streamgo/blobstore"
)

func openBlob(t *testing.T, store *blobstore.MemoryStore, name string) blobstore.Blob {
	t.Helper()
	b, err := store.Open(context.Background(), name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestRaw_Load(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "hero.png", []byte("pixels")))

	l := NewRaw()
	assert.True(t, l.CanLoad("anything.at.all"))

	meta := asset.Metadata{ID: "hero", Path: "hero.png", Type: "texture"}
	a, err := l.Load(ctx, meta, openBlob(t, store, "hero.png"))
	require.NoError(t, err)

	raw, ok := a.(*asset.Raw)
	require.True(t, ok)
	assert.Equal(t, []byte("pixels"), raw.Bytes())
	assert.Equal(t, int64(6), a.MemoryUsage())
}

func TestRaw_ExtractMetadata(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "music/theme.ogg", make([]byte, 2048)))

	l := NewRaw()
	meta, err := l.ExtractMetadata(ctx, store, "music/theme.ogg")
	require.NoError(t, err)

	assert.Equal(t, "music/theme.ogg", meta.ID)
	assert.Equal(t, "audio", meta.Type)
	assert.Equal(t, int64(2048), meta.EstimatedSize)
	require.NoError(t, meta.Validate())

	_, err = l.ExtractMetadata(ctx, store, "missing.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestCompressed_CanLoad(t *testing.T) {
	l := NewCompressed()
	assert.True(t, l.CanLoad("packs/level.bin.zst"))
	assert.True(t, l.CanLoad("packs/level.bin.ZSTD"))
	assert.True(t, l.CanLoad("packs/level.bin.lz4"))
	assert.False(t, l.CanLoad("packs/level.bin"))
}

func TestCompressed_ZstdRoundTrip(t *testing.T) {
	ctx := context.Background()
	payload := bytes.Repeat([]byte("tile data "), 100)

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll(payload, nil)
	require.NoError(t, enc.Close())

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "level.bin.zst", compressed))

	meta := asset.Metadata{ID: "level", Path: "level.bin.zst", Type: "raw"}
	a, err := NewCompressed().Load(ctx, meta, openBlob(t, store, "level.bin.zst"))
	require.NoError(t, err)

	raw, ok := a.(*asset.Raw)
	require.True(t, ok)
	assert.Equal(t, payload, raw.Bytes())
	// Usage reflects the decompressed size.
	assert.Equal(t, int64(len(payload)), a.MemoryUsage())
}

func TestCompressed_LZ4RoundTrip(t *testing.T) {
	ctx := context.Background()
	payload := bytes.Repeat([]byte("mesh data "), 100)

	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "rock.glb.lz4", buf.Bytes()))

	meta := asset.Metadata{ID: "rock", Path: "rock.glb.lz4", Type: "mesh"}
	a, err := NewCompressed().Load(ctx, meta, openBlob(t, store, "rock.glb.lz4"))
	require.NoError(t, err)

	raw, ok := a.(*asset.Raw)
	require.True(t, ok)
	assert.Equal(t, payload, raw.Bytes())
}

func TestCompressed_CorruptPayload(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "bad.bin.zst", []byte("definitely not zstd")))

	meta := asset.Metadata{ID: "bad", Path: "bad.bin.zst", Type: "raw"}
	_, err := NewCompressed().Load(ctx, meta, openBlob(t, store, "bad.bin.zst"))
	assert.Error(t, err)
}
