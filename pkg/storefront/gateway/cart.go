package gateway

import (
	"context"
	"net/http"
	"strconv"
)

type addToCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (c *Client) Cart(ctx context.Context) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, request{method: http.MethodGet, path: "/cart", auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) (*CartItem, error) {
	var out CartItem
	body := addToCartRequest{ProductID: productID, Quantity: quantity}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/cart/add", body: body, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*CartItem, error) {
	var out CartItem
	path := "/cart/" + strconv.FormatInt(itemID, 10)
	body := updateCartItemRequest{Quantity: quantity}
	if err := c.do(ctx, request{method: http.MethodPut, path: path, body: body, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) error {
	path := "/cart/" + strconv.FormatInt(itemID, 10)
	return c.do(ctx, request{method: http.MethodDelete, path: path, auth: true}, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/cart", auth: true}, nil)
}
