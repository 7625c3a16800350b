package search

import (
	"context"
	"testing"

	"github.com/maldonadorepuestos/storefront/pkg/storefront/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentSearchesBoundAndOrder(t *testing.T) {
	ctx := context.Background()
	r := NewRecentSearches(kv.NewMemoryStore(), nil)
	for _, q := range []string{"eje", "freno", "eje", "led", "king pin", "suspensión"} {
		r.Add(ctx, q)
	}
	assert.Equal(t, []string{"suspensión", "king pin", "led", "eje", "freno"}, r.List())
}

func TestRecentSearchesDropsOldest(t *testing.T) {
	ctx := context.Background()
	r := NewRecentSearches(nil, nil)
	for _, q := range []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7"} {
		r.Add(ctx, q)
	}
	list := r.List()
	require.Len(t, list, MaxRecent)
	assert.Equal(t, "a7", list[0])
	assert.Equal(t, "a3", list[4])
}

func TestRecentSearchesIgnoresBlank(t *testing.T) {
	r := NewRecentSearches(nil, nil)
	r.Add(context.Background(), "   ")
	r.Add(context.Background(), "")
	assert.Empty(t, r.List())
}

func TestRecentSearchesPersistAndLoad(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	r := NewRecentSearches(store, nil)
	r.Add(ctx, "filtro")
	r.Add(ctx, "buje")

	raw, err := store.Get(ctx, RecentStorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `["buje","filtro"]`, string(raw))

	loaded := NewRecentSearches(store, nil)
	require.NoError(t, loaded.Load(ctx))
	assert.Equal(t, []string{"buje", "filtro"}, loaded.List())

	loaded.Clear(ctx)
	assert.Empty(t, loaded.List())
	_, err = store.Get(ctx, RecentStorageKey)
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestRecentSearchesLoadSanitizes(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, RecentStorageKey, []byte(`["a","b","a"," ","c","d","e","f"]`)))

	r := NewRecentSearches(store, nil)
	require.NoError(t, r.Load(ctx))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, r.List())

	require.NoError(t, store.Set(ctx, RecentStorageKey, []byte(`{bad`)))
	r = NewRecentSearches(store, nil)
	require.NoError(t, r.Load(ctx))
	assert.Empty(t, r.List())
}
