package kv

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	mu     sync.Mutex
	values map[string]string
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeRedis) StorefrontKey(scope, key string) string {
	return "mr:storefront:" + scope + ":" + key
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "recentSearches")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "recentSearches", []byte(`["filtro"]`)))
	got, err := store.Get(ctx, "recentSearches")
	require.NoError(t, err)
	assert.JSONEq(t, `["filtro"]`, string(got))

	require.NoError(t, store.Set(ctx, "recentSearches", []byte(`["disco","filtro"]`)))
	got, err = store.Get(ctx, "recentSearches")
	require.NoError(t, err)
	assert.JSONEq(t, `["disco","filtro"]`, string(got))

	require.NoError(t, store.Delete(ctx, "recentSearches"))
	require.NoError(t, store.Delete(ctx, "recentSearches"))
	_, err = store.Get(ctx, "recentSearches")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, store.Set(context.Background(), "k", buf))
	buf[0] = 'z'
	got, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), "maldonado-quote-cart", []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "maldonado-quote-cart.json", entries[0].Name())
}

func TestFileStoreRequiresDir(t *testing.T) {
	_, err := NewFileStore("")
	require.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	backend := &fakeRedis{values: map[string]string{}}
	exerciseStore(t, NewRedisStore(backend))
}

func TestRedisStoreNamespacesKeys(t *testing.T) {
	backend := &fakeRedis{values: map[string]string{}}
	store := NewRedisStore(backend)
	require.NoError(t, store.Set(context.Background(), "maldonado-quote-cart", []byte(`[]`)))
	_, ok := backend.values["mr:storefront:kv:maldonado-quote-cart"]
	assert.True(t, ok)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, closeFn, err := Open(ctx, config.ClientConfig{Storage: config.ClientStorageMemory})
	require.NoError(t, err)
	require.NoError(t, closeFn())
	assert.IsType(t, &MemoryStore{}, store)

	dir := filepath.Join(t.TempDir(), "data")
	store, _, err = Open(ctx, config.ClientConfig{Storage: config.ClientStorageFile, DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)
	assert.DirExists(t, dir)

	_, _, err = Open(ctx, config.ClientConfig{Storage: "etcd"})
	require.Error(t, err)
}
