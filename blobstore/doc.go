// Package blobstore provides storage for persisted models.
//
// A Store maps names to immutable byte blobs. Models are small and always
// read whole, so the interface is Get/Put rather than ranged reads.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: a directory on the local file system
//   - s3.Store: Amazon S3, with an optional DynamoDB version registry
//   - minio.Store: MinIO and other S3-compatible services
package blobstore
