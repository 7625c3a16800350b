package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/gateway"
	"github.com/shopspring/decimal"
)

// CartAPI is the subset of the gateway RemoteStore talks to.
type CartAPI interface {
	Cart(ctx context.Context) (*gateway.Cart, error)
	AddToCart(ctx context.Context, productID int64, quantity int) (*gateway.CartItem, error)
	UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*gateway.CartItem, error)
	RemoveCartItem(ctx context.Context, itemID int64) error
	ClearCart(ctx context.Context) error
}

// Totals are the server computed cart figures. ItemsCount is the number of
// lines as reported by the server.
type Totals struct {
	ItemsCount       int
	Subtotal         decimal.Decimal
	ShippingEstimate decimal.Decimal
	Total            decimal.Decimal
}

// RemoteStore mirrors the server cart. Each mutation is sent first and the
// cart is then re-fetched so totals always come from the server.
type RemoteStore struct {
	api  CartAPI
	logg *logger.Logger

	mu            sync.RWMutex
	entries       []Entry
	totals        Totals
	authenticated bool
}

var _ Cart = (*RemoteStore)(nil)

func NewRemoteStore(api CartAPI, logg *logger.Logger) *RemoteStore {
	if logg == nil {
		logg = logger.Nop()
	}
	return &RemoteStore{api: api, logg: logg, entries: []Entry{}}
}

// Refresh re-fetches the cart. An expired session is not an error: state is
// reset and nil is returned.
func (s *RemoteStore) Refresh(ctx context.Context) error {
	remote, err := s.api.Cart(ctx)
	if errors.Is(err, gateway.ErrUnauthorized) {
		s.reset()
		return nil
	}
	if err != nil {
		return fmt.Errorf("refresh cart: %w", err)
	}
	s.apply(remote)
	return nil
}

func (s *RemoteStore) Totals() Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals
}

// Authenticated reports whether the last server round trip had a session.
func (s *RemoteStore) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *RemoteStore) Items() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries)
}

// ItemsCount is the sum of quantities, as for LocalStore.
func (s *RemoteStore) ItemsCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return countQuantities(s.entries)
}

func (s *RemoteStore) IsInCart(productID int64) bool {
	_, ok := s.Item(productID)
	return ok
}

func (s *RemoteStore) Item(productID int64) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := findByProduct(s.entries, productID); i >= 0 {
		return s.entries[i], true
	}
	return Entry{}, false
}

func (s *RemoteStore) AddItem(ctx context.Context, product ProductSnapshot, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	return s.mutate(ctx, "add", func() error {
		_, err := s.api.AddToCart(ctx, product.ID, quantity)
		return err
	})
}

// UpdateQuantity removes the line when quantity <= 0.
func (s *RemoteStore) UpdateQuantity(ctx context.Context, entryID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, entryID)
	}
	itemID, err := parseItemID(entryID)
	if err != nil {
		return err
	}
	return s.mutate(ctx, "update", func() error {
		_, err := s.api.UpdateCartItem(ctx, itemID, quantity)
		return err
	})
}

// RemoveItem ignores entries the store does not know about.
func (s *RemoteStore) RemoveItem(ctx context.Context, entryID string) error {
	s.mu.RLock()
	known := findByID(s.entries, entryID) >= 0
	s.mu.RUnlock()
	if !known {
		return nil
	}
	itemID, err := parseItemID(entryID)
	if err != nil {
		return err
	}
	return s.mutate(ctx, "remove", func() error {
		err := s.api.RemoveCartItem(ctx, itemID)
		if gateway.IsNotFound(err) {
			return nil
		}
		return err
	})
}

func (s *RemoteStore) Clear(ctx context.Context) error {
	return s.mutate(ctx, "clear", func() error {
		return s.api.ClearCart(ctx)
	})
}

func (s *RemoteStore) mutate(ctx context.Context, op string, call func() error) error {
	callErr := call()
	if errors.Is(callErr, gateway.ErrUnauthorized) {
		s.reset()
		return fmt.Errorf("cart %s: %w", op, callErr)
	}

	refreshErr := s.Refresh(ctx)
	if callErr != nil {
		if refreshErr != nil {
			s.logg.WarnErr(ctx, "cart: resync after failed "+op, refreshErr)
		}
		return fmt.Errorf("cart %s: %w", op, callErr)
	}
	return refreshErr
}

func (s *RemoteStore) apply(remote *gateway.Cart) {
	entries := make([]Entry, 0, len(remote.Items))
	for _, item := range remote.Items {
		entries = append(entries, Entry{
			ID:        strconv.FormatInt(item.ID, 10),
			ProductID: item.ProductID,
			Product:   snapshotFromCartProduct(item.Product),
			Quantity:  item.Quantity,
		})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.totals = Totals{
		ItemsCount:       remote.ItemsCount,
		Subtotal:         remote.Subtotal,
		ShippingEstimate: remote.ShippingEstimate,
		Total:            remote.Total,
	}
	s.authenticated = true
}

func (s *RemoteStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = []Entry{}
	s.totals = Totals{}
	s.authenticated = false
}

func parseItemID(entryID string) (int64, error) {
	id, err := strconv.ParseInt(entryID, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("cart: invalid entry id %q", entryID)
	}
	return id, nil
}
