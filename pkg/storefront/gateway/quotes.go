package gateway

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CreateQuote persists a WhatsApp quote. An empty idempotencyKey gets a
// fresh one; pass the same key when retrying so the server replays the
// original quote instead of creating a second one.
func (c *Client) CreateQuote(ctx context.Context, payload QuoteRequest, idempotencyKey string) (*Quote, error) {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	var out Quote
	req := request{
		method:         http.MethodPost,
		path:           "/quotes/whatsapp",
		body:           payload,
		idempotencyKey: idempotencyKey,
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateContactQuote sends a free-form request with no items.
func (c *Client) CreateContactQuote(ctx context.Context, payload ContactQuoteRequest, idempotencyKey string) (*Quote, error) {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	var out Quote
	req := request{
		method:         http.MethodPost,
		path:           "/quotes",
		body:           payload,
		idempotencyKey: idempotencyKey,
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyQuotes(ctx context.Context) ([]Quote, error) {
	var out []Quote
	err := c.do(ctx, request{method: http.MethodGet, path: "/quotes/my-quotes", auth: true}, &out)
	return out, err
}
