package enums

import (
	"fmt"
	"strings"
)

// ProductSortField lists the columns catalog listings may be ordered by.
type ProductSortField string

const (
	ProductSortCreatedAt ProductSortField = "created_at"
	ProductSortPrice     ProductSortField = "price"
	ProductSortName      ProductSortField = "name"
	ProductSortRating    ProductSortField = "rating"
)

var validProductSortFields = []ProductSortField{
	ProductSortCreatedAt,
	ProductSortPrice,
	ProductSortName,
	ProductSortRating,
}

func (f ProductSortField) String() string {
	return string(f)
}

func (f ProductSortField) IsValid() bool {
	for _, candidate := range validProductSortFields {
		if candidate == f {
			return true
		}
	}
	return false
}

func ParseProductSortField(value string) (ProductSortField, error) {
	for _, candidate := range validProductSortFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort field %q", value)
}

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}
