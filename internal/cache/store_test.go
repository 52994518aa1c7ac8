package cache_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docconv/internal/cache"
	"github.com/joseph-ayodele/docconv/internal/common"
)

func openMemory(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(context.Background(), common.CacheConfig{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestStore_Miss(t *testing.T) {
	store := openMemory(t)

	payload, found, err := store.Get(context.Background(), "nope")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, payload)
}

func TestStore_PutGetUpsert(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte(`{"v":1}`)))
	require.NoError(t, store.Put(ctx, "k", []byte(`{"v":2}`)))

	payload, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"v":2}`, string(payload))
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	store, err := cache.Open(ctx, common.CacheConfig{DSN: "sqlite:" + path}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	store.Close()

	reopened, err := cache.Open(ctx, common.CacheConfig{DSN: "sqlite:" + path}, nil)
	require.NoError(t, err)
	defer reopened.Close()
	payload, found, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", string(payload))
}

func TestOpen_UnsupportedDSN(t *testing.T) {
	_, err := cache.Open(context.Background(), common.CacheConfig{DSN: "redis://localhost:6379"}, nil)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeConfig, appErr.Code)
}
