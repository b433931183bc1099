// Package s3 provides an Amazon S3 implementation of the
// blobstore.Store interface for cloud-hosted asset packs.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("assets/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	mgr, err := streamgo.New(store, streamgo.WithMemoryBudget(512<<20))
//
// # Features
//
//   - Range reads for partial payload fetches
//   - Multipart uploads for large pack blobs
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
