package redis

import (
	"context"
	"errors"
	"strings"
	"time"
)

const namespace = "mr"

// key joins non-empty parts under the shared namespace.
func key(parts ...string) string {
	b := strings.Builder{}
	b.WriteString(namespace)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteByte(':')
			b.WriteString(p)
		}
	}
	return b.String()
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return key("idempotency", scope, id)
}

// StorefrontKey namespaces values written by the SDK key-value store.
func (c *Client) StorefrontKey(scope, name string) string {
	return key("storefront", scope, name)
}

// AccessSessionKey holds the user id for a live access token jti. Logout
// deletes it, which revokes the token before it expires.
func (c *Client) AccessSessionKey(accessID string) string {
	return key("session", "access", accessID)
}

func (c *Client) StoreAccessSession(ctx context.Context, accessID, userID string, ttl time.Duration) error {
	return c.Set(ctx, c.AccessSessionKey(accessID), userID, ttl)
}

func (c *Client) HasAccessSession(ctx context.Context, accessID string) (bool, error) {
	_, err := c.Get(ctx, c.AccessSessionKey(accessID))
	switch {
	case errors.Is(err, Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (c *Client) RevokeAccessSession(ctx context.Context, accessID string) error {
	return c.Del(ctx, c.AccessSessionKey(accessID))
}
