// Package s3 provides an Amazon S3 implementation of blobstore.Store and a
// DynamoDB-backed version registry.
//
// # Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "models/")
//	registry := s3.NewRegistry(dynamodb.NewFromConfig(cfg), "vecml-models")
//
// S3 has no compare-and-swap, so concurrent writers that publish a new model
// version coordinate through the registry's conditional writes.
package s3
