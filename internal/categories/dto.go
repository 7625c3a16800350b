package categories

import (
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/imageurl"
)

// CategoryDTO is the public category shape, including its active product count.
type CategoryDTO struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   *string   `json:"description"`
	Icon          *string   `json:"icon"`
	ImageURL      *string   `json:"image_url"`
	ImageThumbURL *string   `json:"image_thumb_url"`
	IsActive      bool      `json:"is_active"`
	DisplayOrder  int       `json:"display_order"`
	ProductsCount int64     `json:"products_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromModel maps a category row plus its product count to the DTO.
func FromModel(c models.Category, productsCount int64) CategoryDTO {
	return CategoryDTO{
		ID:            c.ID,
		Name:          c.Name,
		Slug:          c.Slug,
		Description:   c.Description,
		Icon:          c.Icon,
		ImageURL:      c.ImageURL,
		ImageThumbURL: imageurl.ForPresetPtr(c.ImageURL, imageurl.CategoryThumb),
		IsActive:      c.IsActive,
		DisplayOrder:  c.DisplayOrder,
		ProductsCount: productsCount,
		CreatedAt:     c.CreatedAt,
	}
}
