package minio

import (
	"context"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecml/blobstore"
)

// TestStore_Integration requires a running MinIO instance on localhost:9000.
func TestStore_Integration(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	probe, cancelProbe := context.WithTimeout(ctx, 2*time.Second)
	defer cancelProbe()
	if _, err := client.ListBuckets(probe); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	bucket := "test-vecml"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	require.NoError(t, store.Put(ctx, "iris/1.vml", []byte("model")))
	data, err := store.Get(ctx, "iris/1.vml")
	require.NoError(t, err)
	assert.Equal(t, "model", string(data))

	names, err := store.List(ctx, "iris/")
	require.NoError(t, err)
	assert.Contains(t, names, "iris/1.vml")

	require.NoError(t, store.Delete(ctx, "iris/1.vml"))
	_, err = store.Get(ctx, "iris/1.vml")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestStore_Key(t *testing.T) {
	s := NewStore(nil, "bucket", "root/")
	assert.Equal(t, "root/iris/1.vml", s.key("iris/1.vml"))
	assert.Equal(t, "iris", NewStore(nil, "b", "").key("iris"))
}
