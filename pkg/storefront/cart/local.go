package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/kv"
	"github.com/shopspring/decimal"
)

// StorageKey is where the local cart document lives in the kv store.
const StorageKey = "maldonado-quote-cart"

// LocalStore is the anonymous quote cart. Memory is authoritative; every
// mutation rewrites the whole document to the kv store and a failed write is
// only logged.
type LocalStore struct {
	mu         sync.Mutex
	entries    []Entry
	store      kv.Store
	logg       *logger.Logger
	newID      func() string
	persistErr error
}

var _ Cart = (*LocalStore)(nil)

func NewLocalStore(store kv.Store, logg *logger.Logger) *LocalStore {
	if store == nil {
		store = kv.NewMemoryStore()
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &LocalStore{
		entries: []Entry{},
		store:   store,
		logg:    logg,
		newID:   uuid.NewString,
	}
}

// Load replaces memory with the persisted document. A missing or corrupt
// document leaves the cart empty.
func (s *LocalStore) Load(ctx context.Context) error {
	raw, err := s.store.Get(ctx, StorageKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logg.WarnErr(ctx, "cart: read persisted cart", err)
		return fmt.Errorf("load cart: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logg.WarnErr(ctx, "cart: ignoring corrupt persisted cart", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries[:0]
	for _, e := range entries {
		if e.Quantity <= 0 || e.ID == "" {
			continue
		}
		s.entries = append(s.entries, e)
	}
	return nil
}

func (s *LocalStore) Items() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEntries(s.entries)
}

// ItemsCount is the sum of quantities.
func (s *LocalStore) ItemsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countQuantities(s.entries)
}

func (s *LocalStore) IsInCart(productID int64) bool {
	_, ok := s.Item(productID)
	return ok
}

func (s *LocalStore) Item(productID int64) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := findByProduct(s.entries, productID); i >= 0 {
		return s.entries[i], true
	}
	return Entry{}, false
}

// Subtotal sums priced lines. onRequest reports whether any line has no price.
func (s *LocalStore) Subtotal() (subtotal decimal.Decimal, onRequest bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Product.Price.IsOnRequest() {
			onRequest = true
			continue
		}
		subtotal = subtotal.Add(e.LineTotal())
	}
	return subtotal, onRequest
}

// AddItem merges into the existing entry for the product or appends a new
// one. A non-positive quantity counts as 1.
func (s *LocalStore) AddItem(ctx context.Context, product ProductSnapshot, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := findByProduct(s.entries, product.ID); i >= 0 {
		s.entries[i].Quantity += quantity
	} else {
		s.entries = append(s.entries, Entry{
			ID:        s.newID(),
			ProductID: product.ID,
			Product:   product,
			Quantity:  quantity,
		})
	}
	s.persist(ctx)
	return nil
}

// UpdateQuantity removes the entry when quantity <= 0.
func (s *LocalStore) UpdateQuantity(ctx context.Context, entryID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := findByID(s.entries, entryID)
	if i < 0 {
		return nil
	}
	if quantity <= 0 {
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
	} else {
		s.entries[i].Quantity = quantity
	}
	s.persist(ctx)
	return nil
}

func (s *LocalStore) RemoveItem(ctx context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := findByID(s.entries, entryID)
	if i < 0 {
		return nil
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.persist(ctx)
	return nil
}

func (s *LocalStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = []Entry{}
	s.persist(ctx)
	return nil
}

// LastPersistError returns the error of the most recent write, nil once a
// later write succeeds.
func (s *LocalStore) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

// persist must be called with mu held.
func (s *LocalStore) persist(ctx context.Context) {
	raw, err := json.Marshal(s.entries)
	if err == nil {
		err = s.store.Set(ctx, StorageKey, raw)
	}
	s.persistErr = err
	if err != nil {
		s.logg.WarnErr(ctx, "cart: persist failed, keeping in-memory cart", err)
	}
}
