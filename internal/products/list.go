package product

import (
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	"github.com/maldonadorepuestos/storefront/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProductListFilters describe the supported filter knobs for the browse endpoint.
type ProductListFilters struct {
	CategoryID   *int64
	CategorySlug string
	Brand        string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	InStock      *bool
	Featured     *bool
	IsNew        *bool
}

// Sort picks the ordering column and direction.
type Sort struct {
	Field enums.ProductSortField
	Order enums.SortOrder
}

// ListProductsInput captures the inputs needed to page through the catalog.
type ListProductsInput struct {
	Filters    ProductListFilters
	Sort       Sort
	Pagination pagination.Params
}

// SearchProductsInput is a listing narrowed by free text.
type SearchProductsInput struct {
	Query      string
	Filters    ProductListFilters
	Sort       Sort
	Pagination pagination.Params
}

// ProductListResult is one page of products.
type ProductListResult = pagination.Page[ProductDTO]

func (s Sort) withDefaults(field enums.ProductSortField, order enums.SortOrder) Sort {
	if !s.Field.IsValid() {
		s.Field = field
	}
	if s.Order != enums.SortAsc && s.Order != enums.SortDesc {
		s.Order = order
	}
	return s
}
