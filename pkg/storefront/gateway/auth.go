package gateway

import (
	"context"
	"net/http"
)

// Login authenticates and stores the returned access token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: body}, &out); err != nil {
		return nil, err
	}
	if err := c.tokens.SetToken(ctx, out.AccessToken); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, payload RegisterRequest) (*User, error) {
	var out User
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: payload}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me", auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMe(ctx context.Context, payload UpdateProfileRequest) (*User, error) {
	var out User
	if err := c.do(ctx, request{method: http.MethodPut, path: "/auth/me", body: payload, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the server session and always drops the local token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout", auth: true}, nil)
	if clearErr := c.tokens.Clear(ctx); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}
