package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog part. A zero Price means the price is given on request.
type Product struct {
	ID            int64               `gorm:"column:id;primaryKey;autoIncrement"`
	CategoryID    int64               `gorm:"column:category_id;not null;index"`
	Name          string              `gorm:"column:name;type:varchar(200);not null"`
	Code          string              `gorm:"column:code;type:varchar(50);not null;uniqueIndex"`
	Brand         string              `gorm:"column:brand;type:varchar(100);not null"`
	Description   *string             `gorm:"column:description;type:text"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	OriginalPrice decimal.NullDecimal `gorm:"column:original_price;type:numeric(12,2)"`
	Stock         int                 `gorm:"column:stock;not null;default:0"`
	ImageURL      *string             `gorm:"column:image_url;type:varchar(500)"`
	IsActive      bool                `gorm:"column:is_active;not null;default:true"`
	IsFeatured    bool                `gorm:"column:is_featured;not null;default:false"`
	IsNew         bool                `gorm:"column:is_new;not null;default:false"`
	Rating        decimal.Decimal     `gorm:"column:rating;type:numeric(2,1);not null;default:0"`
	ReviewsCount  int                 `gorm:"column:reviews_count;not null;default:0"`
	Category      *Category           `gorm:"foreignKey:CategoryID"`
	Images        []ProductImage      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p Product) InStock() bool {
	return p.Stock > 0
}

// DiscountPercent returns the rounded-down markdown against OriginalPrice.
func (p Product) DiscountPercent() *int {
	if !p.OriginalPrice.Valid || !p.OriginalPrice.Decimal.GreaterThan(p.Price) || !p.OriginalPrice.Decimal.IsPositive() {
		return nil
	}
	ratio := decimal.NewFromInt(1).Sub(p.Price.Div(p.OriginalPrice.Decimal))
	pct := int(ratio.Mul(decimal.NewFromInt(100)).IntPart())
	return &pct
}

// ProductImage is an additional gallery image, ordered by DisplayOrder.
type ProductImage struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID    int64     `gorm:"column:product_id;not null;index"`
	ImageURL     string    `gorm:"column:image_url;type:varchar(500);not null"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	IsPrimary    bool      `gorm:"column:is_primary;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProductImage) TableName() string { return "product_images" }
