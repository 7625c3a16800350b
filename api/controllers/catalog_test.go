package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maldonadorepuestos/storefront/internal/banners"
	"github.com/maldonadorepuestos/storefront/internal/categories"
	product "github.com/maldonadorepuestos/storefront/internal/products"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/maldonadorepuestos/storefront/pkg/pagination"
)

type stubProductService struct {
	listInput   product.ListProductsInput
	searchInput product.SearchProductsInput
	gotID       int64
	gotCode     string
	err         error
}

func (s *stubProductService) ListProducts(ctx context.Context, input product.ListProductsInput) (*product.ProductListResult, error) {
	s.listInput = input
	if s.err != nil {
		return nil, s.err
	}
	page := pagination.NewPage([]product.ProductDTO{{ID: 1, Name: "Filtro de aceite"}}, 1, input.Pagination)
	return &page, nil
}

func (s *stubProductService) SearchProducts(ctx context.Context, input product.SearchProductsInput) (*product.ProductListResult, error) {
	s.searchInput = input
	page := pagination.NewPage([]product.ProductDTO{}, 0, input.Pagination)
	return &page, s.err
}

func (s *stubProductService) GetProduct(ctx context.Context, id int64) (*product.ProductDTO, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return &product.ProductDTO{ID: id, Code: "FA-100"}, nil
}

func (s *stubProductService) GetProductByCode(ctx context.Context, code string) (*product.ProductDTO, error) {
	s.gotCode = code
	if s.err != nil {
		return nil, s.err
	}
	return &product.ProductDTO{ID: 3, Code: code}, nil
}

func TestProductsListParsesFilters(t *testing.T) {
	svc := &stubProductService{}
	req := newRequest(http.MethodGet, "/api/products?category_slug=frenos&brand=bosch&min_price=1000&max_price=5000.50&in_stock=true&is_new=false&sort_by=price&sort_order=asc&page=2&page_size=10", "", nil)

	rec := serve(ProductsList(svc, testLogger()), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	f := svc.listInput.Filters
	assert.Equal(t, "frenos", f.CategorySlug)
	assert.Equal(t, "bosch", f.Brand)
	require.NotNil(t, f.MinPrice)
	assert.True(t, f.MinPrice.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, "5000.5", f.MaxPrice.String())
	require.NotNil(t, f.InStock)
	assert.True(t, *f.InStock)
	require.NotNil(t, f.IsNew)
	assert.False(t, *f.IsNew)
	assert.Nil(t, f.Featured)
	assert.Nil(t, f.CategoryID)
	assert.Equal(t, enums.ProductSortPrice, svc.listInput.Sort.Field)
	assert.Equal(t, enums.SortAsc, svc.listInput.Sort.Order)
	assert.Equal(t, pagination.Params{Page: 2, PageSize: 10}, svc.listInput.Pagination)

	var page pagination.Page[product.ProductDTO]
	decodeData(t, rec, &page)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Page)
}

func TestProductsListRejectsBadQuery(t *testing.T) {
	cases := map[string]string{
		"sort field":  "/api/products?sort_by=stock",
		"sort order":  "/api/products?sort_order=sideways",
		"page size":   "/api/products?page_size=500",
		"negative":    "/api/products?min_price=-1",
		"bool":        "/api/products?featured=maybe",
		"category id": "/api/products?category_id=abc",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(ProductsList(&stubProductService{}, testLogger()), newRequest(http.MethodGet, target, "", nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, string(pkgerrors.CodeValidation), decodeError(t, rec).Code)
		})
	}
}

func TestProductsSearchRequiresQuery(t *testing.T) {
	svc := &stubProductService{}
	rec := serve(ProductsSearch(svc, testLogger()), newRequest(http.MethodGet, "/api/products/search?q=%20", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(ProductsSearch(svc, testLogger()), newRequest(http.MethodGet, "/api/products/search?q=pastilla+freno", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pastilla freno", svc.searchInput.Query)
	assert.Equal(t, pagination.DefaultPageSize, svc.searchInput.Pagination.PageSize)
}

func TestProductByIDAndCode(t *testing.T) {
	svc := &stubProductService{}

	rec := serve(ProductByID(svc, testLogger()), newRequest(http.MethodGet, "/api/products/42", "", map[string]string{"productId": "42"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), svc.gotID)

	rec = serve(ProductByID(svc, testLogger()), newRequest(http.MethodGet, "/api/products/x", "", map[string]string{"productId": "x"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(ProductByCode(svc, testLogger()), newRequest(http.MethodGet, "/api/products/code/FA-100", "", map[string]string{"code": "FA-100"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "FA-100", svc.gotCode)

	svc.err = pkgerrors.New(pkgerrors.CodeNotFound, "Producto no encontrado")
	rec = serve(ProductByCode(svc, testLogger()), newRequest(http.MethodGet, "/api/products/code/NOPE", "", map[string]string{"code": "NOPE"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Producto no encontrado", decodeError(t, rec).Message)
}

type stubCategoryService struct {
	activeOnly bool
	slug       string
}

func (s *stubCategoryService) List(ctx context.Context, activeOnly bool) ([]categories.CategoryDTO, error) {
	s.activeOnly = activeOnly
	return []categories.CategoryDTO{{ID: 1, Slug: "frenos"}}, nil
}

func (s *stubCategoryService) GetBySlug(ctx context.Context, slug string) (*categories.CategoryDTO, error) {
	s.slug = slug
	return &categories.CategoryDTO{ID: 1, Slug: slug}, nil
}

func TestCategoriesList(t *testing.T) {
	svc := &stubCategoryService{}
	rec := serve(CategoriesList(svc, testLogger()), newRequest(http.MethodGet, "/api/categories", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.activeOnly)

	rec = serve(CategoriesList(svc, testLogger()), newRequest(http.MethodGet, "/api/categories?active_only=false", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.activeOnly)

	rec = serve(CategoryBySlug(svc, testLogger()), newRequest(http.MethodGet, "/api/categories/frenos", "", map[string]string{"slug": "frenos"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "frenos", svc.slug)
}

type stubBannerService struct {
	err error
}

func (s stubBannerService) Active(ctx context.Context) ([]banners.BannerDTO, error) {
	return []banners.BannerDTO{{ID: 1}}, s.err
}

func (s stubBannerService) All(ctx context.Context) ([]banners.BannerDTO, error) {
	return []banners.BannerDTO{{ID: 1}, {ID: 2}}, s.err
}

func TestBanners(t *testing.T) {
	rec := serve(BannersActive(stubBannerService{}, testLogger()), newRequest(http.MethodGet, "/api/banners", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var active []banners.BannerDTO
	decodeData(t, rec, &active)
	assert.Len(t, active, 1)

	rec = serve(BannersAll(stubBannerService{}, testLogger()), newRequest(http.MethodGet, "/api/banners/all", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(BannersActive(nil, testLogger()), newRequest(http.MethodGet, "/api/banners", "", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
