package main

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/money"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/cart"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/gateway"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/kv"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/quote"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	products []gateway.Product
}

func (s *stubCatalog) Search(_ context.Context, query string, _, pageSize int) (*gateway.ProductPage, error) {
	page := &gateway.ProductPage{Page: 1, PageSize: pageSize}
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			page.Items = append(page.Items, p)
		}
	}
	page.Total = int64(len(page.Items))
	return page, nil
}

func (s *stubCatalog) Product(_ context.Context, id int64) (*gateway.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, &gateway.APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "Producto no encontrado"}
}

func (s *stubCatalog) ProductByCode(_ context.Context, code string) (*gateway.Product, error) {
	for i := range s.products {
		if s.products[i].Code == code {
			return &s.products[i], nil
		}
	}
	return nil, &gateway.APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "Producto no encontrado"}
}

type stubQuotes struct {
	mu       sync.Mutex
	payloads []gateway.QuoteRequest
}

func (s *stubQuotes) CreateQuote(_ context.Context, payload gateway.QuoteRequest, _ string) (*gateway.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	return &gateway.Quote{ID: int64(len(s.payloads)), Name: payload.Name, Status: "pending"}, nil
}

type testApp struct {
	*app
	out    *bytes.Buffer
	errOut *bytes.Buffer
	links  *bytes.Buffer
	quotes *stubQuotes
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	ctx := context.Background()
	store := kv.NewMemoryStore()

	localCart := cart.NewLocalStore(store, nil)
	require.NoError(t, localCart.Load(ctx))
	recent := search.NewRecentSearches(store, nil)
	require.NoError(t, recent.Load(ctx))

	quotes := &stubQuotes{}
	links := &bytes.Buffer{}
	composer := quote.NewComposer(quotes, quote.ComposerOptions{
		WhatsAppNumber: "5491100000000",
		Launcher:       quote.WriterLauncher{W: links},
	})

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	a := &app{
		catalog: &stubCatalog{products: []gateway.Product{
			{ID: 1, Code: "BPW-100", Name: "Buje de elástico", Brand: "BPW", Price: money.FromInt(15000), Stock: 5},
			{ID: 2, Code: "FRE-200", Name: "Pastilla de freno", Brand: "Frasle", Price: money.OnRequest, Stock: 2},
		}},
		cart:     localCart,
		recent:   recent,
		composer: composer,
		delay:    time.Millisecond,
		debounce: time.Millisecond,
		out:      out,
		errOut:   errOut,
	}
	return testApp{app: a, out: out, errOut: errOut, links: links, quotes: quotes}
}

func TestRunWithoutArgsPrintsUsage(t *testing.T) {
	ta := newTestApp(t)

	code := ta.run(context.Background(), nil)

	assert.Equal(t, 2, code)
	assert.Contains(t, ta.errOut.String(), "usage: quotecart")
}

func TestRunUnknownCommand(t *testing.T) {
	ta := newTestApp(t)

	code := ta.run(context.Background(), []string{"checkout"})

	assert.Equal(t, 2, code)
	assert.Contains(t, ta.errOut.String(), `unknown command "checkout"`)
}

func TestSearchPrintsResultsAndRecordsQuery(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	code := ta.run(ctx, []string{"search", "buje"})

	require.Equal(t, 0, code, ta.errOut.String())
	assert.Contains(t, ta.out.String(), "BPW-100")
	assert.NotContains(t, ta.out.String(), "FRE-200")
	assert.Equal(t, []string{"buje"}, ta.recent.List())

	ta.out.Reset()
	require.Equal(t, 0, ta.run(ctx, []string{"recent"}))
	assert.Equal(t, "buje\n", ta.out.String())
}

func TestSearchWithoutMatches(t *testing.T) {
	ta := newTestApp(t)

	code := ta.run(context.Background(), []string{"search", "radiador"})

	require.Equal(t, 0, code, ta.errOut.String())
	assert.Contains(t, ta.out.String(), `Sin resultados para "radiador"`)
}

func TestSearchRejectsShortQuery(t *testing.T) {
	ta := newTestApp(t)

	code := ta.run(context.Background(), []string{"search", "b"})

	assert.Equal(t, 2, code)
	assert.Empty(t, ta.recent.List())
}

func TestAddByCodeAndByID(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	require.Equal(t, 0, ta.run(ctx, []string{"add", "BPW-100", "2"}), ta.errOut.String())
	require.Equal(t, 0, ta.run(ctx, []string{"add", "1"}), ta.errOut.String())

	entry, ok := ta.cart.Item(1)
	require.True(t, ok)
	assert.Equal(t, 3, entry.Quantity)
	assert.Contains(t, ta.out.String(), "Agregado: Buje de elástico (BPW-100) x3")
}

func TestAddUnknownProduct(t *testing.T) {
	ta := newTestApp(t)

	code := ta.run(context.Background(), []string{"add", "XYZ-9"})

	assert.Equal(t, 1, code)
	assert.Contains(t, ta.errOut.String(), `producto "XYZ-9" no encontrado`)
	assert.Equal(t, 0, ta.cart.ItemsCount())
}

func TestAddRejectsBadQuantity(t *testing.T) {
	ta := newTestApp(t)

	assert.Equal(t, 2, ta.run(context.Background(), []string{"add", "BPW-100", "0"}))
	assert.Equal(t, 0, ta.cart.ItemsCount())
}

func TestListShowsOnRequestLines(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.Equal(t, 0, ta.run(ctx, []string{"add", "BPW-100"}))
	require.Equal(t, 0, ta.run(ctx, []string{"add", "FRE-200"}))
	ta.out.Reset()

	require.Equal(t, 0, ta.run(ctx, []string{"list"}))

	out := ta.out.String()
	assert.Contains(t, out, "Artículos: 2")
	assert.Contains(t, out, onRequestLabel)
	assert.Contains(t, out, "Hay productos con precio a consultar")
}

func TestSetAndRemoveByEntryID(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.Equal(t, 0, ta.run(ctx, []string{"add", "BPW-100"}))
	entryID := ta.cart.Items()[0].ID

	require.Equal(t, 0, ta.run(ctx, []string{"set", entryID, "4"}), ta.errOut.String())
	entry, _ := ta.cart.Item(1)
	assert.Equal(t, 4, entry.Quantity)

	require.Equal(t, 0, ta.run(ctx, []string{"remove", entryID}), ta.errOut.String())
	assert.False(t, ta.cart.IsInCart(1))
}

func TestQuoteSubmitsAndClearsCart(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.Equal(t, 0, ta.run(ctx, []string{"add", "BPW-100", "2"}))

	code := ta.run(ctx, []string{"quote", "-name", "Juan Pérez", "-email", "juan@example.com", "-phone", "261-555-0101", "-vehicle", "Scania 113"})

	require.Equal(t, 0, code, ta.errOut.String())
	require.Len(t, ta.quotes.payloads, 1)
	payload := ta.quotes.payloads[0]
	assert.Equal(t, "Juan Pérez", payload.Name)
	require.Len(t, payload.Items, 1)
	assert.Contains(t, ta.out.String(), "Cotización #1 registrada")
	assert.Contains(t, ta.links.String(), "https://wa.me/5491100000000")
	assert.Equal(t, 0, ta.cart.ItemsCount())
}

func TestQuoteRefusesEmptyCart(t *testing.T) {
	ta := newTestApp(t)

	code := ta.run(context.Background(), []string{"quote", "-name", "Juan", "-email", "juan@example.com", "-phone", "261"})

	assert.Equal(t, 1, code)
	assert.Empty(t, ta.quotes.payloads)
}

func TestQuoteInvalidContactKeepsCart(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.Equal(t, 0, ta.run(ctx, []string{"add", "BPW-100"}))

	code := ta.run(ctx, []string{"quote", "-name", "Juan", "-email", "no-es-un-email", "-phone", "261"})

	assert.Equal(t, 1, code)
	assert.Empty(t, ta.quotes.payloads)
	assert.Equal(t, 1, ta.cart.ItemsCount())
}

func TestRecentClear(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.Equal(t, 0, ta.run(ctx, []string{"search", "freno"}))
	require.NotEmpty(t, ta.recent.List())

	require.Equal(t, 0, ta.run(ctx, []string{"recent", "-clear"}))
	assert.Empty(t, ta.recent.List())
}
