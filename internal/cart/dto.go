package cart

import (
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/imageurl"
	"github.com/maldonadorepuestos/storefront/pkg/money"
	"github.com/shopspring/decimal"
)

// AddItemInput is the POST /cart/add payload.
type AddItemInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"omitempty,gte=1"`
}

// UpdateItemInput is the PUT /cart/{itemId} payload.
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// ProductInCart is the product summary embedded in each cart line.
type ProductInCart struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Code          string      `json:"code"`
	Brand         string      `json:"brand"`
	Price         money.Price `json:"price"`
	OriginalPrice money.Price `json:"original_price"`
	Stock         int         `json:"stock"`
	ImageURL      *string     `json:"image_url"`
	ImageThumbURL *string     `json:"image_thumb_url"`
	InStock       bool        `json:"in_stock"`
}

type CartItemDTO struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Product   ProductInCart   `json:"product"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
}

// CartDTO is the cart plus its derived totals. ItemsCount counts lines, not units.
type CartDTO struct {
	Items            []CartItemDTO   `json:"items"`
	ItemsCount       int             `json:"items_count"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ShippingEstimate decimal.Decimal `json:"shipping_estimate"`
	Total            decimal.Decimal `json:"total"`
}

func newCartItemDTO(item models.CartItem, p *models.Product) CartItemDTO {
	dto := CartItemDTO{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Subtotal:  decimal.Zero,
		CreatedAt: item.CreatedAt,
	}
	if p == nil {
		return dto
	}
	dto.Product = ProductInCart{
		ID:            p.ID,
		Name:          p.Name,
		Code:          p.Code,
		Brand:         p.Brand,
		Price:         money.Priced(p.Price),
		Stock:         p.Stock,
		ImageURL:      p.ImageURL,
		ImageThumbURL: imageurl.ForPresetPtr(p.ImageURL, imageurl.CartThumb),
		InStock:       p.InStock(),
	}
	if p.OriginalPrice.Valid {
		dto.Product.OriginalPrice = money.Priced(p.OriginalPrice.Decimal)
	}
	dto.Subtotal = money.LineTotal(dto.Product.Price, item.Quantity)
	return dto
}
