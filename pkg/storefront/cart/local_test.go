package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/maldonadorepuestos/storefront/pkg/money"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	kv.Store
	fail bool
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("quota exceeded")
	}
	return f.Store.Set(ctx, key, value)
}

func product(id int64, code string, price int64) ProductSnapshot {
	return ProductSnapshot{ID: id, Code: code, Name: "Producto " + code, Brand: "BPW", Price: money.FromInt(price)}
}

func TestLocalStoreAddItemMerges(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(kv.NewMemoryStore(), nil)

	require.NoError(t, s.AddItem(ctx, product(1, "BPW-1", 100), 2))
	require.NoError(t, s.AddItem(ctx, product(1, "BPW-1", 100), 3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, s.ItemsCount())
	assert.NotEmpty(t, items[0].ID)
}

func TestLocalStoreMergeInvariant(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(nil, nil)
	want := map[int64]int{}
	seq := []struct {
		id  int64
		qty int
	}{{1, 2}, {2, 1}, {1, 4}, {3, 7}, {2, 2}, {3, 1}, {1, 1}}

	for _, step := range seq {
		require.NoError(t, s.AddItem(ctx, product(step.id, fmt.Sprint(step.id), 10), step.qty))
		want[step.id] += step.qty
	}

	items := s.Items()
	require.Len(t, items, len(want))
	sum := 0
	for _, e := range items {
		assert.Equal(t, want[e.ProductID], e.Quantity)
		sum += e.Quantity
	}
	assert.Equal(t, sum, s.ItemsCount())
	assert.Equal(t, []int64{1, 2, 3}, []int64{items[0].ProductID, items[1].ProductID, items[2].ProductID})
}

func TestLocalStoreAddItemDefaultsQuantity(t *testing.T) {
	s := NewLocalStore(nil, nil)
	require.NoError(t, s.AddItem(context.Background(), product(9, "X", 1), 0))
	entry, ok := s.Item(9)
	require.True(t, ok)
	assert.Equal(t, 1, entry.Quantity)
}

func TestLocalStoreUpdateQuantityToZeroRemoves(t *testing.T) {
	ctx := context.Background()
	for _, q := range []int{0, -1, -10} {
		t.Run(fmt.Sprint(q), func(t *testing.T) {
			byUpdate := NewLocalStore(nil, nil)
			byRemove := NewLocalStore(nil, nil)
			for _, s := range []*LocalStore{byUpdate, byRemove} {
				require.NoError(t, s.AddItem(ctx, product(1, "A", 1), 1))
				require.NoError(t, s.AddItem(ctx, product(2, "B", 1), 1))
			}

			first, _ := byUpdate.Item(1)
			require.NoError(t, byUpdate.UpdateQuantity(ctx, first.ID, q))
			first, _ = byRemove.Item(1)
			require.NoError(t, byRemove.RemoveItem(ctx, first.ID))

			assert.False(t, byUpdate.IsInCart(1))
			assert.True(t, byUpdate.IsInCart(2))
			assert.Equal(t, len(byRemove.Items()), len(byUpdate.Items()))
			assert.Equal(t, byRemove.ItemsCount(), byUpdate.ItemsCount())
		})
	}
}

func TestLocalStoreUpdateQuantityKeepsPosition(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(nil, nil)
	require.NoError(t, s.AddItem(ctx, product(1, "A", 1), 1))
	require.NoError(t, s.AddItem(ctx, product(2, "B", 1), 1))
	require.NoError(t, s.AddItem(ctx, product(3, "C", 1), 1))

	second, _ := s.Item(2)
	require.NoError(t, s.UpdateQuantity(ctx, second.ID, 8))

	items := s.Items()
	assert.Equal(t, int64(2), items[1].ProductID)
	assert.Equal(t, 8, items[1].Quantity)
	assert.Equal(t, 10, s.ItemsCount())
}

func TestLocalStoreRemoveItemIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(nil, nil)
	require.NoError(t, s.AddItem(ctx, product(1, "A", 1), 2))

	before := s.Items()
	require.NoError(t, s.RemoveItem(ctx, "missing"))
	assert.Equal(t, before, s.Items())
}

func TestLocalStorePersistsAndLoads(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	s := NewLocalStore(store, nil)
	require.NoError(t, s.AddItem(ctx, product(1, "BPW-1", 15000), 2))
	require.NoError(t, s.AddItem(ctx, ProductSnapshot{ID: 2, Code: "MER-2", Name: "Eje"}, 1))

	raw, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	var doc []map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc, 2)
	assert.Nil(t, doc[1]["product"].(map[string]any)["price"])

	restored := NewLocalStore(store, nil)
	require.NoError(t, restored.Load(ctx))
	original, loaded := s.Items(), restored.Items()
	require.Len(t, loaded, len(original))
	for i := range original {
		assert.Equal(t, original[i].ID, loaded[i].ID)
		assert.Equal(t, original[i].Quantity, loaded[i].Quantity)
		assert.True(t, original[i].Product.Price.Equal(loaded[i].Product.Price))
	}
	entry, ok := restored.Item(2)
	require.True(t, ok)
	assert.True(t, entry.Product.Price.IsOnRequest())
}

func TestLocalStoreLoadIgnoresCorruptDocument(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, StorageKey, []byte("{not json")))

	s := NewLocalStore(store, nil)
	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.Items())
}

func TestLocalStorePersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: kv.NewMemoryStore(), fail: true}
	s := NewLocalStore(store, nil)

	require.NoError(t, s.AddItem(ctx, product(1, "A", 1), 3))
	assert.Equal(t, 3, s.ItemsCount())
	require.Error(t, s.LastPersistError())

	store.fail = false
	require.NoError(t, s.AddItem(ctx, product(1, "A", 1), 1))
	assert.NoError(t, s.LastPersistError())
	assert.Equal(t, 4, s.ItemsCount())
}

func TestLocalStoreClear(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	s := NewLocalStore(store, nil)
	require.NoError(t, s.AddItem(ctx, product(1, "A", 1), 3))
	require.NoError(t, s.Clear(ctx))
	assert.Zero(t, s.ItemsCount())

	raw, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestLocalStoreSubtotalSkipsOnRequest(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(nil, nil)
	require.NoError(t, s.AddItem(ctx, product(1, "A", 1500), 2))
	require.NoError(t, s.AddItem(ctx, ProductSnapshot{ID: 2, Code: "B"}, 1))

	subtotal, onRequest := s.Subtotal()
	assert.Equal(t, "3000", subtotal.String())
	assert.True(t, onRequest)
}

func TestLocalStoreConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.AddItem(ctx, product(int64(i%5), "P", 1), 1)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.ItemsCount())
	assert.Len(t, s.Items(), 5)
}
