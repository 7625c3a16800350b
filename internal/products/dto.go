package product

import (
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/imageurl"
	"github.com/maldonadorepuestos/storefront/pkg/money"
	"github.com/shopspring/decimal"
)

// ProductDTO is the public product payload. A null price means the part is
// quoted on request.
type ProductDTO struct {
	ID              int64             `json:"id"`
	CategoryID      int64             `json:"category_id"`
	Name            string            `json:"name"`
	Code            string            `json:"code"`
	Brand           string            `json:"brand"`
	Description     *string           `json:"description"`
	Price           money.Price       `json:"price"`
	OriginalPrice   money.Price       `json:"original_price"`
	Stock           int               `json:"stock"`
	InStock         bool              `json:"in_stock"`
	ImageURL        *string           `json:"image_url"`
	ImageThumbURL   *string           `json:"image_thumb_url"`
	IsActive        bool              `json:"is_active"`
	IsFeatured      bool              `json:"is_featured"`
	IsNew           bool              `json:"is_new"`
	Rating          decimal.Decimal   `json:"rating"`
	ReviewsCount    int               `json:"reviews_count"`
	DiscountPercent *int              `json:"discount_percent"`
	Category        *CategorySummary  `json:"category,omitempty"`
	Images          []ProductImageDTO `json:"images"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// CategorySummary is the category embedded in product payloads.
type CategorySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ProductImageDTO struct {
	ID           int64  `json:"id"`
	ImageURL     string `json:"image_url"`
	DisplayOrder int    `json:"display_order"`
	IsPrimary    bool   `json:"is_primary"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(p *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:              p.ID,
		CategoryID:      p.CategoryID,
		Name:            p.Name,
		Code:            p.Code,
		Brand:           p.Brand,
		Description:     p.Description,
		Price:           money.Priced(p.Price),
		Stock:           p.Stock,
		InStock:         p.InStock(),
		ImageURL:        p.ImageURL,
		ImageThumbURL:   imageurl.ForPresetPtr(p.ImageURL, imageurl.CardGrid),
		IsActive:        p.IsActive,
		IsFeatured:      p.IsFeatured,
		IsNew:           p.IsNew,
		Rating:          p.Rating,
		ReviewsCount:    p.ReviewsCount,
		DiscountPercent: p.DiscountPercent(),
		Images:          make([]ProductImageDTO, 0, len(p.Images)),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.OriginalPrice.Valid {
		dto.OriginalPrice = money.Priced(p.OriginalPrice.Decimal)
	}
	if p.Category != nil {
		dto.Category = &CategorySummary{ID: p.Category.ID, Name: p.Category.Name, Slug: p.Category.Slug}
	}
	for _, img := range p.Images {
		dto.Images = append(dto.Images, ProductImageDTO{
			ID:           img.ID,
			ImageURL:     img.ImageURL,
			DisplayOrder: img.DisplayOrder,
			IsPrimary:    img.IsPrimary,
		})
	}
	return dto
}
