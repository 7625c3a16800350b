package models

import (
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/enums"
)

// Banner is a hero slide. StartDate and EndDate bound its visibility when set.
type Banner struct {
	ID           int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Title        string           `gorm:"column:title;type:varchar(100);not null"`
	Subtitle     *string          `gorm:"column:subtitle;type:varchar(200)"`
	Description  *string          `gorm:"column:description;type:text"`
	ImageURL     *string          `gorm:"column:image_url;type:varchar(500)"`
	Brand        *string          `gorm:"column:brand;type:varchar(50)"`
	ButtonText   *string          `gorm:"column:button_text;type:varchar(50)"`
	ButtonLink   *string          `gorm:"column:button_link;type:varchar(200)"`
	ProductCodes *string          `gorm:"column:product_codes;type:text"`
	BannerType   enums.BannerType `gorm:"column:banner_type;type:varchar(20);not null;default:'promo'"`
	BgColor      *string          `gorm:"column:bg_color;type:varchar(50)"`
	Order        int              `gorm:"column:order;not null;default:0"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true"`
	StartDate    *time.Time       `gorm:"column:start_date"`
	EndDate      *time.Time       `gorm:"column:end_date"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Banner) TableName() string { return "banners" }

// ActiveAt reports whether the banner should be shown at t.
func (b Banner) ActiveAt(t time.Time) bool {
	if !b.IsActive {
		return false
	}
	if b.StartDate != nil && b.StartDate.After(t) {
		return false
	}
	if b.EndDate != nil && b.EndDate.Before(t) {
		return false
	}
	return true
}
