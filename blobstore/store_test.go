package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "textures/hero.png", []byte("pixels")))

	size, err := s.Stat(ctx, "textures/hero.png")
	require.NoError(t, err)
	assert.Equal(t, int64(6), size)

	b, err := s.Open(ctx, "textures/hero.png")
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	data, err := ReadAll(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), data)
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Stat(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "textures/a.png", []byte("a")))
	require.NoError(t, s.Put(ctx, "textures/b.png", []byte("b")))
	require.NoError(t, s.Put(ctx, "audio/c.ogg", []byte("c")))

	names, err := s.List(ctx, "textures/")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewLocalStore(dir)

	require.NoError(t, s.Put(ctx, "packs/level1.bin", []byte("level data")))

	size, err := s.Stat(ctx, "packs/level1.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	b, err := s.Open(ctx, "packs/level1.bin")
	require.NoError(t, err)

	data, err := ReadAll(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, []byte("level data"), data)

	// Partial read at offset.
	buf := make([]byte, 4)
	n, err := b.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "data", string(buf))

	require.NoError(t, b.Close())

	require.NoError(t, s.Delete(ctx, "packs/level1.bin"))
	_, err = s.Stat(ctx, "packs/level1.bin")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalStore_List(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewLocalStore(dir)

	require.NoError(t, s.Put(ctx, "a/one.bin", []byte("1")))
	require.NoError(t, s.Put(ctx, "a/two.bin", []byte("2")))
	require.NoError(t, s.Put(ctx, "b/three.bin", []byte("3")))

	names, err := s.List(ctx, "a/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a/one.bin", "a/two.bin"}, names)
}

func TestLocalStore_OpenMissing(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	_, err := s.Open(context.Background(), filepath.Join("nope", "missing.bin"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
