package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"Memory": func(*testing.T) Store { return NewMemoryStore() },
		"Local":  func(t *testing.T) Store { return NewLocalStore(t.TempDir()) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, "models/iris/v1", []byte("one")))
			require.NoError(t, s.Put(ctx, "models/iris/v2", []byte("two")))
			require.NoError(t, s.Put(ctx, "other", []byte("x")))

			data, err := s.Get(ctx, "models/iris/v1")
			require.NoError(t, err)
			assert.Equal(t, "one", string(data))

			// Returned slices are not shared with the store.
			data[0] = 'X'
			data, err = s.Get(ctx, "models/iris/v1")
			require.NoError(t, err)
			assert.Equal(t, "one", string(data))

			require.NoError(t, s.Put(ctx, "models/iris/v1", []byte("uno")))
			data, err = s.Get(ctx, "models/iris/v1")
			require.NoError(t, err)
			assert.Equal(t, "uno", string(data))

			names, err := s.List(ctx, "models/")
			require.NoError(t, err)
			assert.Equal(t, []string{"models/iris/v1", "models/iris/v2"}, names)

			all, err := s.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, 3)

			require.NoError(t, s.Delete(ctx, "models/iris/v1"))
			require.NoError(t, s.Delete(ctx, "models/iris/v1"))
			_, err = s.Get(ctx, "models/iris/v1")
			assert.ErrorIs(t, err, ErrNotFound)

			canceled, cancel := context.WithCancel(ctx)
			cancel()
			assert.ErrorIs(t, s.Put(canceled, "x", nil), context.Canceled)
		})
	}
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewLocalStore(dir)

	require.NoError(t, s.Put(ctx, "a/b.bin", []byte("hello")))
	_, err := os.Stat(filepath.Join(dir, "a", "b.bin"))
	require.NoError(t, err)

	// Leftover temp files are not blobs.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", ".tmp-123"), nil, 0o600))
	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b.bin"}, names)

	empty := NewLocalStore(filepath.Join(dir, "does-not-exist"))
	names, err = empty.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}
