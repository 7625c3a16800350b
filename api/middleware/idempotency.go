package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maldonadorepuestos/storefront/api/responses"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	pkgredis "github.com/maldonadorepuestos/storefront/pkg/redis"
)

const (
	idempotencyHeader     = "Idempotency-Key"
	defaultIdempotencyTTL = 24 * time.Hour
	// inFlightTTL bounds how long a crashed request can hold its key.
	inFlightTTL = 2 * time.Minute
)

type idempotencyRule struct {
	method string
	route  string
	ttl    time.Duration
}

// idempotencyRules lists the writes whose responses are kept per key. The
// header stays optional on all of them.
func idempotencyRules(quoteTTL time.Duration) []idempotencyRule {
	if quoteTTL <= 0 {
		quoteTTL = defaultIdempotencyTTL
	}
	return []idempotencyRule{
		{http.MethodPost, "/api/quotes/whatsapp", quoteTTL},
		{http.MethodPost, "/api/quotes", quoteTTL},
		{http.MethodPost, "/api/quotes/", quoteTTL},
		{http.MethodPost, "/api/auth/register", defaultIdempotencyTTL},
		{http.MethodPost, "/api/cart/add", defaultIdempotencyTTL},
		{http.MethodPost, "/api/orders", defaultIdempotencyTTL},
		{http.MethodPost, "/api/orders/", defaultIdempotencyTTL},
	}
}

func matchRule(rules []idempotencyRule, method, route string) (idempotencyRule, bool) {
	for _, rule := range rules {
		if rule.method == method && rule.route == route {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

// storedResponse is what a replay writes back. Body is base64 through
// encoding/json's []byte handling. A record with InFlight set is the claim
// taken while the first request is still running.
type storedResponse struct {
	InFlight    bool   `json:"in_flight,omitempty"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	RequestHash string `json:"request_hash"`
}

// Idempotency replays the stored response when a request repeats its
// Idempotency-Key with the same body, and answers 409 when the body
// differs or the first request is still running. The key is claimed before
// the handler runs. 5xx responses release it so the client can retry.
func Idempotency(store pkgredis.ReplayStore, quoteTTL time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	rules := idempotencyRules(quoteTTL)
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchRule(rules, r.Method, routePattern(r))
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if !ok || clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			sum := sha256.Sum256(body)
			hash := hex.EncodeToString(sum[:])
			key := store.IdempotencyKey(UserIDFromContext(ctx)+"|"+r.Method+"|"+r.URL.Path, clientKey)

			claim, err := json.Marshal(storedResponse{InFlight: true, RequestHash: hash})
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "idempotency claim"))
				return
			}
			claimed, err := store.SetNX(ctx, key, string(claim), inFlightTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency claim failed"))
				return
			}
			if !claimed {
				replayStored(ctx, store, key, hash, w, logg)
				return
			}

			saved := false
			bg := context.WithoutCancel(ctx)
			defer func() {
				if saved {
					return
				}
				if err := store.Del(bg, key); err != nil {
					logg.Error(ctx, "idempotency claim not released", err)
				}
			}()

			capture := &bodyRecorder{statusRecorder: statusRecorder{ResponseWriter: w}}
			next.ServeHTTP(capture, r)
			status := defaultStatus(capture.status)
			if status >= http.StatusInternalServerError {
				return
			}

			payload, err := json.Marshal(storedResponse{
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				RequestHash: hash,
			})
			if err == nil {
				err = store.Set(bg, key, string(payload), rule.ttl)
			}
			if err != nil {
				logg.Error(ctx, "idempotency record not saved", err)
				return
			}
			saved = true
		})
	}
}

// replayStored answers a request whose key is already taken.
func replayStored(ctx context.Context, store pkgredis.IdempotencyStore, key, hash string, w http.ResponseWriter, logg *logger.Logger) {
	prev, err := loadStored(ctx, store, key)
	switch {
	case err != nil:
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency lookup failed"))
	case prev == nil:
		// released between the claim and the lookup
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key busy, retry"))
	case prev.RequestHash != hash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case prev.InFlight:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in progress"))
	default:
		if prev.ContentType != "" {
			w.Header().Set("Content-Type", prev.ContentType)
		}
		w.WriteHeader(prev.Status)
		_, _ = w.Write(prev.Body)
	}
}

// loadStored returns nil, nil when nothing is stored under key.
func loadStored(ctx context.Context, store pkgredis.IdempotencyStore, key string) (*storedResponse, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, pkgredis.Nil) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var prev storedResponse
	if err := json.Unmarshal([]byte(raw), &prev); err != nil {
		return nil, err
	}
	return &prev, nil
}

// routePattern prefers the chi pattern so path params do not split rules.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

type bodyRecorder struct {
	statusRecorder
	body bytes.Buffer
}

func (b *bodyRecorder) Write(p []byte) (int, error) {
	b.body.Write(p)
	return b.statusRecorder.Write(p)
}
