package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/maldonadorepuestos/storefront/pkg/pagination"
	"gorm.io/gorm"
)

// MinSearchLength is the shortest accepted search query.
const MinSearchLength = 2

const productNotFoundMessage = "Producto no encontrado"

// Service exposes the public catalog operations.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	SearchProducts(ctx context.Context, input SearchProductsInput) (*ProductListResult, error)
	GetProduct(ctx context.Context, id int64) (*ProductDTO, error)
	GetProductByCode(ctx context.Context, code string) (*ProductDTO, error)
}

type repository interface {
	List(ctx context.Context, q listQuery) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindByCode(ctx context.Context, code string) (*models.Product, error)
}

type service struct {
	repo repository
}

// NewService builds the catalog service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	if err := validatePriceRange(input.Filters); err != nil {
		return nil, err
	}
	sort := input.Sort.withDefaults(enums.ProductSortCreatedAt, enums.SortDesc)
	return s.list(ctx, "", input.Filters, sort, input.Pagination)
}

func (s *service) SearchProducts(ctx context.Context, input SearchProductsInput) (*ProductListResult, error) {
	text := strings.TrimSpace(input.Query)
	if utf8.RuneCountInString(text) < MinSearchLength {
		return nil, pkgerrors.Validation("validation failed", pkgerrors.FieldErrors{
			"q": fmt.Sprintf("must be at least %d characters", MinSearchLength),
		})
	}
	sort := input.Sort.withDefaults(enums.ProductSortName, enums.SortAsc)
	return s.list(ctx, text, input.Filters, sort, input.Pagination)
}

func (s *service) list(ctx context.Context, text string, filters ProductListFilters, sort Sort, params pagination.Params) (*ProductListResult, error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, listQuery{
		Text:    text,
		Filters: filters,
		Sort:    sort,
		Offset:  params.Offset(),
		Limit:   params.PageSize,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	items := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, NewProductDTO(&rows[i]))
	}
	page := pagination.NewPage(items, total, params)
	return &page, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*ProductDTO, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	return s.load(s.repo.FindByID(ctx, id))
}

func (s *service) GetProductByCode(ctx context.Context, code string) (*ProductDTO, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	return s.load(s.repo.FindByCode(ctx, code))
}

func (s *service) load(p *models.Product, err error) (*ProductDTO, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	dto := NewProductDTO(p)
	return &dto, nil
}

func validatePriceRange(f ProductListFilters) error {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return pkgerrors.Validation("validation failed", pkgerrors.FieldErrors{
			"min_price": "must be less than or equal to max_price",
		})
	}
	return nil
}
