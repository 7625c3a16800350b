package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/maldonadorepuestos/storefront/pkg/enums"
)

// Order is a purchase built from a user's server cart. Totals are frozen at
// checkout.
type Order struct {
	ID              int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          int64             `gorm:"column:user_id;not null;index"`
	OrderNumber     string            `gorm:"column:order_number;type:varchar(50);not null;uniqueIndex"`
	Status          enums.OrderStatus `gorm:"column:status;type:varchar(20);not null;default:'pending'"`
	Subtotal        decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingCost    decimal.Decimal   `gorm:"column:shipping_cost;type:numeric(12,2);not null;default:0"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentID       *string           `gorm:"column:payment_id;type:varchar(100)"`
	PaymentStatus   *string           `gorm:"column:payment_status;type:varchar(50)"`
	ShippingName    *string           `gorm:"column:shipping_name;type:varchar(200)"`
	ShippingAddress *string           `gorm:"column:shipping_address;type:text"`
	ShippingCity    *string           `gorm:"column:shipping_city;type:varchar(100)"`
	ShippingState   *string           `gorm:"column:shipping_state;type:varchar(100)"`
	ShippingZip     *string           `gorm:"column:shipping_zip;type:varchar(20)"`
	ShippingPhone   *string           `gorm:"column:shipping_phone;type:varchar(50)"`
	Notes           *string           `gorm:"column:notes;type:text"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	PaidAt          *time.Time        `gorm:"column:paid_at"`
	ShippedAt       *time.Time        `gorm:"column:shipped_at"`
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots the product as it was sold.
type OrderItem struct {
	ID           int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID      int64           `gorm:"column:order_id;not null;index"`
	ProductID    int64           `gorm:"column:product_id;not null"`
	ProductName  string          `gorm:"column:product_name;type:varchar(200);not null"`
	ProductCode  string          `gorm:"column:product_code;type:varchar(50);not null"`
	ProductBrand string          `gorm:"column:product_brand;type:varchar(100);not null"`
	Quantity     int             `gorm:"column:quantity;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TotalPrice   decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
}

func (OrderItem) TableName() string { return "order_items" }
