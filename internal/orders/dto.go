package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	"github.com/maldonadorepuestos/storefront/pkg/pagination"
)

// CreateOrderInput is the POST /orders payload. The lines come from the
// caller's server cart, never from the request.
type CreateOrderInput struct {
	ShippingName    string  `json:"shipping_name" validate:"required,min=2,max=200"`
	ShippingAddress string  `json:"shipping_address" validate:"required,min=5"`
	ShippingCity    string  `json:"shipping_city" validate:"required,min=2,max=100"`
	ShippingState   string  `json:"shipping_state" validate:"required,min=2,max=100"`
	ShippingZip     string  `json:"shipping_zip" validate:"required,min=4,max=20"`
	ShippingPhone   string  `json:"shipping_phone" validate:"required,min=8,max=50"`
	Notes           *string `json:"notes"`
}

// UpdateStatusInput is the PUT /admin/orders/{id}/status payload. Notes are
// appended to the order, not replaced.
type UpdateStatusInput struct {
	Status enums.OrderStatus `json:"status" validate:"required,oneof=pending payment_pending paid processing shipped delivered cancelled"`
	Notes  *string           `json:"notes"`
}

// ListOrdersInput drives the admin listing.
type ListOrdersInput struct {
	Status     *enums.OrderStatus
	Pagination pagination.Params
}

type OrderItemDTO struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductCode  string          `json:"product_code"`
	ProductBrand string          `json:"product_brand"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

type OrderDTO struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user_id"`
	OrderNumber     string            `json:"order_number"`
	Status          enums.OrderStatus `json:"status"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	ShippingCost    decimal.Decimal   `json:"shipping_cost"`
	Total           decimal.Decimal   `json:"total"`
	PaymentID       *string           `json:"payment_id"`
	PaymentStatus   *string           `json:"payment_status"`
	ShippingName    *string           `json:"shipping_name"`
	ShippingAddress *string           `json:"shipping_address"`
	ShippingCity    *string           `json:"shipping_city"`
	ShippingState   *string           `json:"shipping_state"`
	ShippingZip     *string           `json:"shipping_zip"`
	ShippingPhone   *string           `json:"shipping_phone"`
	Notes           *string           `json:"notes"`
	Items           []OrderItemDTO    `json:"items"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	PaidAt          *time.Time        `json:"paid_at"`
	ShippedAt       *time.Time        `json:"shipped_at"`
}

type OrderListResult = pagination.Page[OrderDTO]

func FromModel(o models.Order) OrderDTO {
	dto := OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		Total:           o.Total,
		PaymentID:       o.PaymentID,
		PaymentStatus:   o.PaymentStatus,
		ShippingName:    o.ShippingName,
		ShippingAddress: o.ShippingAddress,
		ShippingCity:    o.ShippingCity,
		ShippingState:   o.ShippingState,
		ShippingZip:     o.ShippingZip,
		ShippingPhone:   o.ShippingPhone,
		Notes:           o.Notes,
		Items:           make([]OrderItemDTO, 0, len(o.Items)),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		PaidAt:          o.PaidAt,
		ShippedAt:       o.ShippedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductCode:  item.ProductCode,
			ProductBrand: item.ProductBrand,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			TotalPrice:   item.TotalPrice,
		})
	}
	return dto
}
