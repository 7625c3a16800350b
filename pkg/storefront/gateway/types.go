package gateway

import (
	"net/url"
	"strconv"
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/money"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug"`
	Description   *string `json:"description"`
	Icon          *string `json:"icon"`
	ImageURL      *string `json:"image_url"`
	IsActive      bool    `json:"is_active"`
	DisplayOrder  int     `json:"display_order"`
	ProductsCount int64   `json:"products_count"`
}

type ProductImage struct {
	ID           int64  `json:"id"`
	ImageURL     string `json:"image_url"`
	DisplayOrder int    `json:"display_order"`
	IsPrimary    bool   `json:"is_primary"`
}

type Product struct {
	ID              int64           `json:"id"`
	CategoryID      int64           `json:"category_id"`
	Name            string          `json:"name"`
	Code            string          `json:"code"`
	Brand           string          `json:"brand"`
	Description     *string         `json:"description"`
	Price           money.Price     `json:"price"`
	OriginalPrice   money.Price     `json:"original_price"`
	Stock           int             `json:"stock"`
	InStock         bool            `json:"in_stock"`
	ImageURL        *string         `json:"image_url"`
	ImageThumbURL   *string         `json:"image_thumb_url"`
	IsFeatured      bool            `json:"is_featured"`
	IsNew           bool            `json:"is_new"`
	Rating          decimal.Decimal `json:"rating"`
	ReviewsCount    int             `json:"reviews_count"`
	DiscountPercent *int            `json:"discount_percent"`
	Category        *Category       `json:"category,omitempty"`
	Images          []ProductImage  `json:"images,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ProductPage is one page of a product listing or search.
type ProductPage struct {
	Items      []Product `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// ProductFilter mirrors the listing query parameters. Zero values are omitted.
type ProductFilter struct {
	Page         int
	PageSize     int
	CategoryID   int64
	CategorySlug string
	Brand        string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	InStock      *bool
	Featured     *bool
	IsNew        *bool
	SortBy       string
	SortOrder    string
}

func (f ProductFilter) values() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	if f.CategoryID > 0 {
		q.Set("category_id", strconv.FormatInt(f.CategoryID, 10))
	}
	if f.CategorySlug != "" {
		q.Set("category_slug", f.CategorySlug)
	}
	if f.Brand != "" {
		q.Set("brand", f.Brand)
	}
	if f.MinPrice != nil {
		q.Set("min_price", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		q.Set("max_price", f.MaxPrice.String())
	}
	if f.InStock != nil {
		q.Set("in_stock", strconv.FormatBool(*f.InStock))
	}
	if f.Featured != nil {
		q.Set("featured", strconv.FormatBool(*f.Featured))
	}
	if f.IsNew != nil {
		q.Set("is_new", strconv.FormatBool(*f.IsNew))
	}
	if f.SortBy != "" {
		q.Set("sort_by", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sort_order", f.SortOrder)
	}
	return q
}

type Banner struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Subtitle     *string    `json:"subtitle"`
	Description  *string    `json:"description"`
	ImageURL     *string    `json:"image_url"`
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
}

type CartProduct struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	Code          string      `json:"code"`
	Brand         string      `json:"brand"`
	Price         money.Price `json:"price"`
	OriginalPrice money.Price `json:"original_price"`
	Stock         int         `json:"stock"`
	ImageURL      *string     `json:"image_url"`
	InStock       bool        `json:"in_stock"`
}

type CartItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Product   CartProduct     `json:"product"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
}

// Cart is the server's view of an authenticated cart with derived totals.
type Cart struct {
	Items            []CartItem      `json:"items"`
	ItemsCount       int             `json:"items_count"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ShippingEstimate decimal.Decimal `json:"shipping_estimate"`
	Total            decimal.Decimal `json:"total"`
}

type QuoteItemRequest struct {
	ProductID   int64  `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// QuoteRequest is the persistence payload of a WhatsApp quote.
type QuoteRequest struct {
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	VehicleInfo     *string            `json:"vehicle_info"`
	Message         *string            `json:"message"`
	SentViaWhatsApp bool               `json:"sent_via_whatsapp"`
	Items           []QuoteItemRequest `json:"items"`
}

type QuoteItem struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type Quote struct {
	ID              int64       `json:"id"`
	UserID          *int64      `json:"user_id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone"`
	VehicleInfo     *string     `json:"vehicle_info"`
	Message         *string     `json:"message"`
	SentViaWhatsApp bool        `json:"sent_via_whatsapp"`
	Status          string      `json:"status"`
	Items           []QuoteItem `json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone,omitempty"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// ContactQuoteRequest is the item-less quote sent from the contact form.
type ContactQuoteRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	VehicleInfo *string `json:"vehicle_info,omitempty"`
	Message     string  `json:"message"`
}

// OrderRequest carries the shipping details; the lines come from the
// server cart.
type OrderRequest struct {
	ShippingName    string  `json:"shipping_name"`
	ShippingAddress string  `json:"shipping_address"`
	ShippingCity    string  `json:"shipping_city"`
	ShippingState   string  `json:"shipping_state"`
	ShippingZip     string  `json:"shipping_zip"`
	ShippingPhone   string  `json:"shipping_phone"`
	Notes           *string `json:"notes,omitempty"`
}

type OrderItem struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductCode  string          `json:"product_code"`
	ProductBrand string          `json:"product_brand"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"order_number"`
	Status          string          `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	Total           decimal.Decimal `json:"total"`
	ShippingName    *string         `json:"shipping_name"`
	ShippingAddress *string         `json:"shipping_address"`
	ShippingCity    *string         `json:"shipping_city"`
	ShippingState   *string         `json:"shipping_state"`
	ShippingZip     *string         `json:"shipping_zip"`
	ShippingPhone   *string         `json:"shipping_phone"`
	Notes           *string         `json:"notes"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	PaidAt          *time.Time      `json:"paid_at"`
	ShippedAt       *time.Time      `json:"shipped_at"`
}

type OrderPage struct {
	Items      []Order `json:"items"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}
