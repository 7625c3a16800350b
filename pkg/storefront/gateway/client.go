// Package gateway is the typed REST client for the storefront backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maldonadorepuestos/storefront/pkg/config"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/types"
	"github.com/sethvargo/go-retry"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRetryBase = 200 * time.Millisecond

	headerIdempotencyKey = "Idempotency-Key"
	headerRequestID      = "X-Request-ID"
)

// Options configures a Client. Zero values fall back to sane defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint64
	RetryBase  time.Duration
	CacheSize  int
	CacheTTLs  map[Resource]time.Duration
	HTTPClient *http.Client
	Tokens     TokenStore
	Logger     *logger.Logger
}

// OptionsFromConfig maps the SDK configuration onto client options.
func OptionsFromConfig(cfg config.ClientConfig) Options {
	return Options{
		BaseURL:    cfg.APIURL,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryBase:  cfg.RetryBase,
		CacheSize:  cfg.CacheSize,
	}
}

type Client struct {
	baseURL    string
	timeout    time.Duration
	maxRetries uint64
	retryBase  time.Duration
	http       *http.Client
	tokens     TokenStore
	cache      *responseCache
	logg       *logger.Logger
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("gateway: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("gateway: parse base url: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = defaultRetryBase
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Tokens == nil {
		opts.Tokens = NewMemoryTokenStore("")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Client{
		baseURL:    base,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		retryBase:  opts.RetryBase,
		http:       opts.HTTPClient,
		tokens:     opts.Tokens,
		cache:      newResponseCache(opts.CacheSize, opts.CacheTTLs),
		logg:       opts.Logger,
	}, nil
}

// Tokens exposes the token store backing authenticated calls.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// InvalidateCache drops cached responses whose key contains pattern and
// returns how many were removed. An empty pattern clears everything.
func (c *Client) InvalidateCache(pattern string) int {
	return c.cache.invalidate(pattern)
}

type request struct {
	method         string
	path           string
	query          url.Values
	body           any
	auth           bool
	cache          Resource
	idempotencyKey string
}

func (r request) cacheKey() string {
	if len(r.query) == 0 {
		return r.path
	}
	return r.path + "?" + r.query.Encode()
}

// do runs req and decodes the "data" member of the envelope into out.
// Only GETs are retried.
func (c *Client) do(ctx context.Context, req request, out any) error {
	cacheable := req.method == http.MethodGet && req.cache != ""
	if cacheable {
		if raw, ok := c.cache.get(req.cache, req.cacheKey()); ok {
			return decodeData(raw, out)
		}
	}

	var raw []byte
	send := func(ctx context.Context) error {
		var err error
		raw, err = c.send(ctx, req)
		return err
	}

	var err error
	if req.method == http.MethodGet && c.maxRetries > 0 {
		backoff := retry.WithJitterPercent(10, retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase)))
		err = retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := send(ctx); err != nil {
				if isRetryable(err) {
					c.logg.Debug(c.logg.WithField(ctx, "path", req.path), "gateway retrying request")
					return retry.RetryableError(err)
				}
				return err
			}
			return nil
		})
	} else {
		err = send(ctx)
	}
	if err != nil {
		return err
	}

	if cacheable {
		c.cache.put(req.cache, req.cacheKey(), raw)
	}
	return decodeData(raw, out)
}

func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("gateway: encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(headerRequestID, uuid.NewString())
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.idempotencyKey != "" {
		httpReq.Header.Set(headerIdempotencyKey, req.idempotencyKey)
	}
	if token, err := c.tokens.Token(ctx); err == nil && token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	} else if req.auth {
		return nil, c.unauthorized(ctx, &APIError{Status: http.StatusUnauthorized, Message: "not authenticated"})
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp.StatusCode, raw)
		if apiErr.Status == http.StatusUnauthorized {
			return nil, c.unauthorized(ctx, apiErr)
		}
		return nil, apiErr
	}
	return raw, nil
}

func (c *Client) unauthorized(ctx context.Context, apiErr *APIError) error {
	if err := c.tokens.Clear(ctx); err != nil {
		c.logg.WarnErr(ctx, "gateway failed to clear token", err)
	}
	return apiErr
}

func classifyTransport(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &transportError{kind: ErrTimeout, err: err}
	}
	return &transportError{kind: ErrNetwork, err: err}
}

func decodeAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	var env types.ErrorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
	}
	return apiErr
}

func decodeData(raw []byte, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	var env types.RawEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("gateway: decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("gateway: decode data: %w", err)
	}
	return nil
}
