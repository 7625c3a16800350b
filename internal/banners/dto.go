package banners

import (
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/imageurl"
)

type BannerDTO struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Subtitle     *string    `json:"subtitle"`
	Description  *string    `json:"description"`
	ImageURL     *string    `json:"image_url"`
	ImageHeroURL *string    `json:"image_hero_url"`
	Brand        *string    `json:"brand"`
	ButtonText   *string    `json:"button_text"`
	ButtonLink   *string    `json:"button_link"`
	ProductCodes *string    `json:"product_codes"`
	BannerType   string     `json:"banner_type"`
	BgColor      *string    `json:"bg_color"`
	Order        int        `json:"order"`
	IsActive     bool       `json:"is_active"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func FromModel(b models.Banner) BannerDTO {
	return BannerDTO{
		ID:           b.ID,
		Title:        b.Title,
		Subtitle:     b.Subtitle,
		Description:  b.Description,
		ImageURL:     b.ImageURL,
		ImageHeroURL: imageurl.ForPresetPtr(b.ImageURL, imageurl.HeroBanner),
		Brand:        b.Brand,
		ButtonText:   b.ButtonText,
		ButtonLink:   b.ButtonLink,
		ProductCodes: b.ProductCodes,
		BannerType:   string(b.BannerType),
		BgColor:      b.BgColor,
		Order:        b.Order,
		IsActive:     b.IsActive,
		StartDate:    b.StartDate,
		EndDate:      b.EndDate,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
