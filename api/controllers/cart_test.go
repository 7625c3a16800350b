package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartsvc "github.com/maldonadorepuestos/storefront/internal/cart"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
)

type stubCartService struct {
	userID  int64
	itemID  int64
	add     cartsvc.AddItemInput
	update  cartsvc.UpdateItemInput
	removed bool
	cleared bool
	err     error
}

func (s *stubCartService) GetCart(ctx context.Context, userID int64) (*cartsvc.CartDTO, error) {
	s.userID = userID
	return &cartsvc.CartDTO{
		Items:            []cartsvc.CartItemDTO{},
		Subtotal:         decimal.NewFromInt(20000),
		ShippingEstimate: decimal.NewFromInt(5000),
		Total:            decimal.NewFromInt(25000),
	}, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, userID int64, input cartsvc.AddItemInput) (*cartsvc.CartItemDTO, error) {
	s.userID = userID
	s.add = input
	if s.err != nil {
		return nil, s.err
	}
	return &cartsvc.CartItemDTO{ID: 9, ProductID: input.ProductID, Quantity: input.Quantity}, nil
}

func (s *stubCartService) UpdateItem(ctx context.Context, userID, itemID int64, input cartsvc.UpdateItemInput) (*cartsvc.CartItemDTO, error) {
	s.userID, s.itemID, s.update = userID, itemID, input
	return &cartsvc.CartItemDTO{ID: itemID, Quantity: input.Quantity}, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	s.userID, s.itemID, s.removed = userID, itemID, true
	return s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID int64) error {
	s.userID, s.cleared = userID, true
	return s.err
}

func TestCartRequiresUser(t *testing.T) {
	svc := &stubCartService{}
	rec := serve(CartGet(svc, testLogger()), newRequest(http.MethodGet, "/api/cart", "", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartGet(t *testing.T) {
	svc := &stubCartService{}
	req := asUser(newRequest(http.MethodGet, "/api/cart", "", nil), "5", string(enums.UserRoleUser))
	rec := serve(CartGet(svc, testLogger()), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), svc.userID)

	var cart cartsvc.CartDTO
	decodeData(t, rec, &cart)
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(25000)))
}

func TestCartAdd(t *testing.T) {
	svc := &stubCartService{}
	req := asUser(newRequest(http.MethodPost, "/api/cart/add", `{"product_id":12,"quantity":3}`, nil), "5", string(enums.UserRoleUser))
	rec := serve(CartAdd(svc, testLogger()), req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, cartsvc.AddItemInput{ProductID: 12, Quantity: 3}, svc.add)

	req = asUser(newRequest(http.MethodPost, "/api/cart/add", `{"product_id":0}`, nil), "5", string(enums.UserRoleUser))
	rec = serve(CartAdd(svc, testLogger()), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.err = pkgerrors.New(pkgerrors.CodeValidation, "Stock insuficiente")
	req = asUser(newRequest(http.MethodPost, "/api/cart/add", `{"product_id":12,"quantity":300}`, nil), "5", string(enums.UserRoleUser))
	rec = serve(CartAdd(svc, testLogger()), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Stock insuficiente", decodeError(t, rec).Message)
}

func TestCartUpdateRemoveClear(t *testing.T) {
	svc := &stubCartService{}
	params := map[string]string{"itemId": "4"}

	req := asUser(newRequest(http.MethodPut, "/api/cart/4", `{"quantity":2}`, params), "5", string(enums.UserRoleUser))
	rec := serve(CartUpdateItem(svc, testLogger()), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), svc.itemID)
	assert.Equal(t, 2, svc.update.Quantity)

	req = asUser(newRequest(http.MethodPut, "/api/cart/4", `{"quantity":0}`, params), "5", string(enums.UserRoleUser))
	rec = serve(CartUpdateItem(svc, testLogger()), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = asUser(newRequest(http.MethodDelete, "/api/cart/4", "", params), "5", string(enums.UserRoleUser))
	rec = serve(CartRemoveItem(svc, testLogger()), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, svc.removed)

	req = asUser(newRequest(http.MethodDelete, "/api/cart", "", nil), "5", string(enums.UserRoleUser))
	rec = serve(CartClear(svc, testLogger()), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, svc.cleared)
}
