// Package minio provides a blobstore.Store implementation using the
// MinIO client, for asset packs hosted on MinIO or any S3-compatible
// object store (Ceph, SeaweedFS, Garage).
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "game-assets", "packs/")
//	mgr, err := streamgo.New(store, streamgo.WithMemoryBudget(512<<20))
//
// # Features
//
//   - Native MinIO client with ranged reads
//   - Works with any S3-compatible storage
//   - Air-gap friendly (no AWS dependencies required)
package minio
