package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// CreateOrder checks out the signed-in user's server cart. Reuse
// idempotencyKey when retrying; an empty one gets a fresh key.
func (c *Client) CreateOrder(ctx context.Context, payload OrderRequest, idempotencyKey string) (*Order, error) {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	var out Order
	req := request{
		method:         http.MethodPost,
		path:           "/orders",
		body:           payload,
		auth:           true,
		idempotencyKey: idempotencyKey,
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Orders pages through the caller's orders, newest first. Zero values use
// the server defaults.
func (c *Client) Orders(ctx context.Context, page, pageSize int) (*OrderPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	var out OrderPage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/orders", query: q, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Order(ctx context.Context, id int64) (*Order, error) {
	var out Order
	path := "/orders/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
