package main

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/vecml/blobstore"
	minioblob "github.com/hupe1980/vecml/blobstore/minio"
	s3blob "github.com/hupe1980/vecml/blobstore/s3"
	"github.com/hupe1980/vecml/codec"
	"github.com/hupe1980/vecml/persist"
)

// openStore builds the configured model store. The DynamoDB registry is
// only available for the s3 store and only when a table is configured.
func openStore(ctx context.Context, cfg *Config) (blobstore.Store, *s3blob.Registry, error) {
	switch strings.ToLower(cfg.Store.Kind) {
	case "memory":
		return blobstore.NewMemoryStore(), nil, nil
	case "local", "":
		return blobstore.NewLocalStore(cfg.Store.Path), nil, nil
	case "s3":
		if cfg.Store.Bucket == "" {
			return nil, nil, fmt.Errorf("store.bucket is required for s3")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		store := s3blob.NewStore(awss3.NewFromConfig(awsCfg), cfg.Store.Bucket, cfg.Store.Prefix)
		var registry *s3blob.Registry
		if cfg.Store.DDBTable != "" {
			registry = s3blob.NewRegistry(dynamodb.NewFromConfig(awsCfg), cfg.Store.DDBTable)
		}
		return store, registry, nil
	case "minio":
		if cfg.Store.Bucket == "" || cfg.Store.Endpoint == "" {
			return nil, nil, fmt.Errorf("store.bucket and store.endpoint are required for minio")
		}
		client, err := minio.New(cfg.Store.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Store.AccessKey, cfg.Store.SecretKey, ""),
			Secure: cfg.Store.Secure,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create minio client: %w", err)
		}
		return minioblob.NewStore(client, cfg.Store.Bucket, cfg.Store.Prefix), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
}

func persistOptions(cfg *Config) ([]persist.Option, error) {
	c, ok := codec.ByName(cfg.Persist.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (want one of %s)", cfg.Persist.Codec, strings.Join(codec.Names(), ", "))
	}
	comp, err := persist.ParseCompression(cfg.Persist.Compression)
	if err != nil {
		return nil, err
	}
	return []persist.Option{persist.WithCodec(c), persist.WithCompression(comp)}, nil
}

// resolveModel maps a model name to its blob. With a registry, "name"
// resolves to the latest published version.
func resolveModel(ctx context.Context, registry *s3blob.Registry, name string) (string, error) {
	if registry == nil {
		return name, nil
	}
	_, blob, err := registry.Latest(ctx, name)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", name, err)
	}
	return blob, nil
}
