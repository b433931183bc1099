package minio

import (
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/streamgo/blobstore"
)

// TestStore_Integration requires a running MinIO instance.
// Skipped when none is reachable.
func TestStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	bucket := "test-streamgo"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	if _, err = client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "packs/")

	payload := []byte("compressed sprite atlas")
	require.NoError(t, store.Put(ctx, "level1/atlas.bin", payload))

	size, err := store.Stat(ctx, "level1/atlas.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), size)

	b, err := store.Open(ctx, "level1/atlas.bin")
	require.NoError(t, err)

	data, err := blobstore.ReadAll(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	require.NoError(t, b.Close())

	names, err := store.List(ctx, "level1/")
	require.NoError(t, err)
	assert.Contains(t, names, "level1/atlas.bin")

	require.NoError(t, store.Delete(ctx, "level1/atlas.bin"))
	_, err = store.Stat(ctx, "level1/atlas.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
