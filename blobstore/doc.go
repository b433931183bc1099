// Package blobstore abstracts where asset payloads live.
//
// The streaming core only ever reads payloads; loaders receive an open
// Blob and decode it. Backends:
//
//   - LocalStore: file system, mmap-backed zero-copy reads
//   - MemoryStore: in-memory, for tests and procedurally built packs
//   - blobstore/s3: Amazon S3 (ranged GETs)
//   - blobstore/minio: MinIO and other S3-compatible object stores
//
// Implementations must return an error satisfying
// errors.Is(err, ErrNotFound) for missing payloads.
package blobstore
