// Package cart holds the storefront cart behind one interface with two
// backends: LocalStore persists to a kv.Store, RemoteStore syncs with the
// server cart of a signed in user.
package cart

import (
	"context"

	"github.com/maldonadorepuestos/storefront/pkg/money"
	"github.com/maldonadorepuestos/storefront/pkg/storefront/gateway"
	"github.com/shopspring/decimal"
)

// Cart is implemented by LocalStore and RemoteStore.
type Cart interface {
	Items() []Entry
	ItemsCount() int
	IsInCart(productID int64) bool
	Item(productID int64) (Entry, bool)
	AddItem(ctx context.Context, product ProductSnapshot, quantity int) error
	UpdateQuantity(ctx context.Context, entryID string, quantity int) error
	RemoveItem(ctx context.Context, entryID string) error
	Clear(ctx context.Context) error
}

// ProductSnapshot is the catalog data captured when a product enters the
// cart. Later catalog edits do not change it.
type ProductSnapshot struct {
	ID       int64       `json:"id"`
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	Brand    string      `json:"brand"`
	ImageURL string      `json:"image_url,omitempty"`
	Price    money.Price `json:"price"`
	Stock    int         `json:"stock"`
}

type Entry struct {
	ID        string          `json:"id"`
	ProductID int64           `json:"product_id"`
	Product   ProductSnapshot `json:"product"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is zero for on-request products.
func (e Entry) LineTotal() decimal.Decimal {
	return money.LineTotal(e.Product.Price, e.Quantity)
}

func SnapshotFromProduct(p gateway.Product) ProductSnapshot {
	snap := ProductSnapshot{
		ID:    p.ID,
		Code:  p.Code,
		Name:  p.Name,
		Brand: p.Brand,
		Price: p.Price,
		Stock: p.Stock,
	}
	if p.ImageURL != nil {
		snap.ImageURL = *p.ImageURL
	}
	return snap
}

func snapshotFromCartProduct(p gateway.CartProduct) ProductSnapshot {
	snap := ProductSnapshot{
		ID:    p.ID,
		Code:  p.Code,
		Name:  p.Name,
		Brand: p.Brand,
		Price: p.Price,
		Stock: p.Stock,
	}
	if p.ImageURL != nil {
		snap.ImageURL = *p.ImageURL
	}
	return snap
}

func countQuantities(entries []Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Quantity
	}
	return total
}

func findByProduct(entries []Entry, productID int64) int {
	for i, e := range entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}

func findByID(entries []Entry, entryID string) int {
	for i, e := range entries {
		if e.ID == entryID {
			return i
		}
	}
	return -1
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
