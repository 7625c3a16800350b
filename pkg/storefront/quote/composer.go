package quote

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/cart"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/gateway"
)

// QuoteAPI persists quotes. *gateway.Client satisfies it.
type QuoteAPI interface {
	CreateQuote(ctx context.Context, payload gateway.QuoteRequest, idempotencyKey string) (*gateway.Quote, error)
}

// Result is what a successful submission produced.
type Result struct {
	Quote   *gateway.Quote
	Message string
	Link    string
}

type ComposerOptions struct {
	WhatsAppNumber string
	Launcher       Launcher
	Logger         *logger.Logger
}

// Composer validates, persists and renders quotes, then hands the link to
// the launcher. A failed submission keeps its idempotency key so that
// resubmitting the same payload can never create a second quote.
type Composer struct {
	api      QuoteAPI
	number   string
	launcher Launcher
	logg     *logger.Logger

	mu      sync.Mutex
	pending map[string]string
}

func NewComposer(api QuoteAPI, opts ComposerOptions) *Composer {
	if opts.WhatsAppNumber == "" {
		opts.WhatsAppNumber = DefaultWhatsAppNumber
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Composer{
		api:      api,
		number:   opts.WhatsAppNumber,
		launcher: opts.Launcher,
		logg:     opts.Logger,
		pending:  map[string]string{},
	}
}

// Submit persists the quote and launches the deep link. The launcher is
// fire and forget: its failure is logged and the result is still returned.
// When persisting fails nothing is launched.
func (c *Composer) Submit(ctx context.Context, contact Contact, entries []cart.Entry) (*Result, error) {
	if err := Validate(contact, entries); err != nil {
		return nil, err
	}

	payload := BuildPayload(contact, entries)
	fingerprint, err := fingerprintOf(payload)
	if err != nil {
		return nil, err
	}
	key := c.keyFor(fingerprint)

	start := time.Now()
	created, err := c.api.CreateQuote(ctx, payload, key)
	if err != nil {
		c.logg.WarnErr(c.logg.WithField(ctx, "idempotency_key", key), "quote submission failed", err)
		return nil, fmt.Errorf("submit quote: %w", err)
	}
	c.release(fingerprint)

	ctx = c.logg.WithQuoteID(ctx, created.ID)
	c.logg.Info(c.logg.WithField(ctx, "duration_ms", time.Since(start).Milliseconds()), "quote submitted")

	message := RenderMessage(contact, entries, created.ID)
	res := &Result{
		Quote:   created,
		Message: message,
		Link:    DeepLink(c.number, message),
	}
	if c.launcher != nil {
		if err := c.launcher.Launch(ctx, res.Link); err != nil {
			c.logg.WarnErr(ctx, "quote launcher failed", err)
		}
	}
	return res, nil
}

func (c *Composer) keyFor(fingerprint string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key, ok := c.pending[fingerprint]; ok {
		return key
	}
	key := uuid.NewString()
	c.pending[fingerprint] = key
	return key
}

func (c *Composer) release(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, fingerprint)
}

func fingerprintOf(payload gateway.QuoteRequest) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("fingerprint quote: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
