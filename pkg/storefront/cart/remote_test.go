package cart

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/maldonadorepuestos/storefront/pkg/money"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCartAPI struct {
	items    []gateway.CartItem
	nextID   int64
	calls    []string
	authErr  bool
	failNext error
}

func (s *stubCartAPI) Cart(context.Context) (*gateway.Cart, error) {
	s.calls = append(s.calls, "get")
	if s.authErr {
		return nil, &gateway.APIError{Status: 401, Code: "UNAUTHORIZED"}
	}
	subtotal := decimal.Zero
	for _, it := range s.items {
		subtotal = subtotal.Add(it.Subtotal)
	}
	shipping := decimal.NewFromInt(5000)
	return &gateway.Cart{
		Items:            append([]gateway.CartItem(nil), s.items...),
		ItemsCount:       len(s.items),
		Subtotal:         subtotal,
		ShippingEstimate: shipping,
		Total:            subtotal.Add(shipping),
	}, nil
}

func (s *stubCartAPI) AddToCart(_ context.Context, productID int64, quantity int) (*gateway.CartItem, error) {
	s.calls = append(s.calls, "add")
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity += quantity
			s.items[i].Subtotal = decimal.NewFromInt(int64(100 * s.items[i].Quantity))
			return &s.items[i], nil
		}
	}
	s.nextID++
	item := gateway.CartItem{
		ID:        s.nextID,
		ProductID: productID,
		Product:   gateway.CartProduct{ID: productID, Code: "C" + strconv.FormatInt(productID, 10), Price: money.FromInt(100)},
		Quantity:  quantity,
		Subtotal:  decimal.NewFromInt(int64(100 * quantity)),
	}
	s.items = append(s.items, item)
	return &item, nil
}

func (s *stubCartAPI) UpdateCartItem(_ context.Context, itemID int64, quantity int) (*gateway.CartItem, error) {
	s.calls = append(s.calls, "update")
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].Quantity = quantity
			s.items[i].Subtotal = decimal.NewFromInt(int64(100 * quantity))
			return &s.items[i], nil
		}
	}
	return nil, &gateway.APIError{Status: 404}
}

func (s *stubCartAPI) RemoveCartItem(_ context.Context, itemID int64) error {
	s.calls = append(s.calls, "remove")
	if err := s.takeFailure(); err != nil {
		return err
	}
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return &gateway.APIError{Status: 404}
}

func (s *stubCartAPI) ClearCart(context.Context) error {
	s.calls = append(s.calls, "clear")
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.items = nil
	return nil
}

func (s *stubCartAPI) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func TestRemoteStoreMutationsResync(t *testing.T) {
	ctx := context.Background()
	api := &stubCartAPI{}
	s := NewRemoteStore(api, nil)

	require.NoError(t, s.AddItem(ctx, ProductSnapshot{ID: 10}, 2))
	require.NoError(t, s.AddItem(ctx, ProductSnapshot{ID: 11}, 1))
	assert.Equal(t, []string{"add", "get", "add", "get"}, api.calls)

	assert.True(t, s.Authenticated())
	assert.Equal(t, 3, s.ItemsCount())
	totals := s.Totals()
	assert.Equal(t, 2, totals.ItemsCount)
	assert.Equal(t, "300", totals.Subtotal.String())
	assert.Equal(t, "5300", totals.Total.String())

	entry, ok := s.Item(10)
	require.True(t, ok)
	require.NoError(t, s.UpdateQuantity(ctx, entry.ID, 5))
	entry, _ = s.Item(10)
	assert.Equal(t, 5, entry.Quantity)

	require.NoError(t, s.UpdateQuantity(ctx, entry.ID, 0))
	assert.False(t, s.IsInCart(10))
	assert.Equal(t, "update", api.calls[4])
	assert.Equal(t, "remove", api.calls[6])

	require.NoError(t, s.Clear(ctx))
	assert.Zero(t, s.ItemsCount())
	assert.True(t, s.Totals().Subtotal.IsZero())
}

func TestRemoteStoreRefreshUnauthorizedResets(t *testing.T) {
	ctx := context.Background()
	api := &stubCartAPI{}
	s := NewRemoteStore(api, nil)
	require.NoError(t, s.AddItem(ctx, ProductSnapshot{ID: 1}, 1))

	api.authErr = true
	require.NoError(t, s.Refresh(ctx))
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Items())
	assert.Equal(t, Totals{}, s.Totals())
}

func TestRemoteStoreUnauthorizedMutationResetsAndFails(t *testing.T) {
	ctx := context.Background()
	api := &stubCartAPI{}
	s := NewRemoteStore(api, nil)
	require.NoError(t, s.AddItem(ctx, ProductSnapshot{ID: 1}, 1))

	api.failNext = &gateway.APIError{Status: 401}
	err := s.AddItem(ctx, ProductSnapshot{ID: 2}, 1)
	require.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.Empty(t, s.Items())
	assert.Equal(t, Totals{}, s.Totals())
}

func TestRemoteStoreFailedMutationStillResyncs(t *testing.T) {
	ctx := context.Background()
	api := &stubCartAPI{}
	s := NewRemoteStore(api, nil)
	require.NoError(t, s.AddItem(ctx, ProductSnapshot{ID: 1}, 1))

	api.failNext = &gateway.APIError{Status: 400, Message: "Stock insuficiente"}
	err := s.AddItem(ctx, ProductSnapshot{ID: 1}, 99)
	require.Error(t, err)

	var apiErr *gateway.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Stock insuficiente", apiErr.Message)
	assert.Equal(t, "get", api.calls[len(api.calls)-1])
	assert.Equal(t, 1, s.ItemsCount())
}

func TestRemoteStoreRemoveUnknownEntryIsNoop(t *testing.T) {
	api := &stubCartAPI{}
	s := NewRemoteStore(api, nil)
	require.NoError(t, s.RemoveItem(context.Background(), "77"))
	assert.Empty(t, api.calls)
}

func TestRemoteStoreRefreshPropagatesOtherErrors(t *testing.T) {
	s := NewRemoteStore(&errCartAPI{}, nil)
	require.Error(t, s.Refresh(context.Background()))
}

type errCartAPI struct{ stubCartAPI }

func (e *errCartAPI) Cart(context.Context) (*gateway.Cart, error) {
	return nil, gateway.ErrNetwork
}
