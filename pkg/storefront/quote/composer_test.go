package quote

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/storefront/cart"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubQuoteAPI struct {
	mu       sync.Mutex
	keys     []string
	payloads []gateway.QuoteRequest
	err      error
	nextID   int64
}

func (s *stubQuoteAPI) CreateQuote(_ context.Context, payload gateway.QuoteRequest, key string) (*gateway.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	s.payloads = append(s.payloads, payload)
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	return &gateway.Quote{ID: s.nextID, Name: payload.Name, Status: "pending"}, nil
}

type recordingLauncher struct {
	mu    sync.Mutex
	links []string
	err   error
}

func (r *recordingLauncher) Launch(_ context.Context, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, link)
	return r.err
}

func validContact() Contact {
	return Contact{Name: "Juan", Email: "juan@example.com", Phone: "11-555"}
}

func TestComposerSubmitLaunchesLink(t *testing.T) {
	api := &stubQuoteAPI{nextID: 41}
	launcher := &recordingLauncher{}
	composer := NewComposer(api, ComposerOptions{WhatsAppNumber: "5491100000000", Launcher: launcher})

	res, err := composer.Submit(context.Background(), validContact(), sampleEntries())
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.Quote.ID)
	assert.Contains(t, res.Message, "Tel: 11-555 | Solicitud #42")
	assert.Equal(t, DeepLink("5491100000000", res.Message), res.Link)
	assert.Equal(t, []string{res.Link}, launcher.links)
	require.Len(t, api.keys, 1)
	assert.NotEmpty(t, api.keys[0])
}

func TestComposerSubmitFailureDoesNotLaunch(t *testing.T) {
	api := &stubQuoteAPI{err: gateway.ErrNetwork}
	launcher := &recordingLauncher{}
	composer := NewComposer(api, ComposerOptions{Launcher: launcher})

	_, err := composer.Submit(context.Background(), validContact(), sampleEntries())
	require.ErrorIs(t, err, gateway.ErrNetwork)
	assert.Empty(t, launcher.links)
}

func TestComposerReusesKeyUntilSuccess(t *testing.T) {
	api := &stubQuoteAPI{err: gateway.ErrTimeout}
	composer := NewComposer(api, ComposerOptions{})
	ctx := context.Background()

	_, err := composer.Submit(ctx, validContact(), sampleEntries())
	require.Error(t, err)
	api.err = nil
	_, err = composer.Submit(ctx, validContact(), sampleEntries())
	require.NoError(t, err)
	_, err = composer.Submit(ctx, validContact(), sampleEntries())
	require.NoError(t, err)

	require.Len(t, api.keys, 3)
	assert.Equal(t, api.keys[0], api.keys[1])
	assert.NotEqual(t, api.keys[1], api.keys[2])
}

func TestComposerLauncherErrorIsNotReturned(t *testing.T) {
	launcher := &recordingLauncher{err: errors.New("no browser")}
	composer := NewComposer(&stubQuoteAPI{}, ComposerOptions{Launcher: launcher})

	res, err := composer.Submit(context.Background(), validContact(), sampleEntries())
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestComposerValidatesBeforeNetwork(t *testing.T) {
	api := &stubQuoteAPI{}
	composer := NewComposer(api, ComposerOptions{})

	_, err := composer.Submit(context.Background(), Contact{Name: "Juan"}, sampleEntries())
	require.Error(t, err)
	_, err = composer.Submit(context.Background(), validContact(), nil)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, api.keys)
}

func TestWriterLauncher(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriterLauncher{W: &buf}.Launch(context.Background(), "https://wa.me/1?text=x"))
	assert.Equal(t, "https://wa.me/1?text=x\n", buf.String())
}

func filledCart(t *testing.T) *cart.LocalStore {
	t.Helper()
	store := cart.NewLocalStore(nil, nil)
	for _, e := range sampleEntries() {
		require.NoError(t, store.AddItem(context.Background(), e.Product, e.Quantity))
	}
	return store
}

func TestCheckoutClearsAfterDelay(t *testing.T) {
	store := filledCart(t)
	checkout := NewCheckout(store, NewComposer(&stubQuoteAPI{}, ComposerOptions{}), 30*time.Millisecond)

	var countAtSubmit int
	checkout.OnSubmitted = func(*Result) { countAtSubmit = store.ItemsCount() }

	start := time.Now()
	res, err := checkout.Run(context.Background(), validContact())
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 3, countAtSubmit)
	assert.Zero(t, store.ItemsCount())
}

func TestCheckoutKeepsCartOnFailure(t *testing.T) {
	store := filledCart(t)
	checkout := NewCheckout(store, NewComposer(&stubQuoteAPI{err: gateway.ErrNetwork}, ComposerOptions{}), time.Millisecond)

	_, err := checkout.Run(context.Background(), validContact())
	require.Error(t, err)
	assert.Equal(t, 3, store.ItemsCount())
}

func TestCheckoutRefusesEmptyCart(t *testing.T) {
	api := &stubQuoteAPI{}
	checkout := NewCheckout(cart.NewLocalStore(nil, nil), NewComposer(api, ComposerOptions{}), time.Millisecond)

	_, err := checkout.Run(context.Background(), validContact())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, api.keys)
}

func TestCheckoutCancelledDuringDelayStillClears(t *testing.T) {
	store := filledCart(t)
	api := &stubQuoteAPI{}
	launcher := &recordingLauncher{}
	checkout := NewCheckout(store, NewComposer(api, ComposerOptions{WhatsAppNumber: "5491100000000", Launcher: launcher}), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	checkout.OnSubmitted = func(*Result) { cancel() }

	res, err := checkout.Run(ctx, validContact())
	require.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, res)
	assert.Zero(t, store.ItemsCount())

	// a second run finds nothing to submit
	checkout.OnSubmitted = nil
	_, err = checkout.Run(context.Background(), validContact())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Len(t, api.keys, 1)
	assert.Len(t, launcher.links, 1)
}

func TestNewCheckoutDefaultsDelay(t *testing.T) {
	checkout := NewCheckout(cart.NewLocalStore(nil, nil), nil, 0)
	assert.Equal(t, DefaultConfirmationDelay, checkout.Delay)
}
