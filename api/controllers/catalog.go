package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/maldonadorepuestos/storefront/api/responses"
	"github.com/maldonadorepuestos/storefront/api/validators"
	"github.com/maldonadorepuestos/storefront/internal/banners"
	"github.com/maldonadorepuestos/storefront/internal/categories"
	product "github.com/maldonadorepuestos/storefront/internal/products"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/pagination"
)

// CategoriesList returns active categories unless active_only=false.
func CategoriesList(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "categories service unavailable"))
			return
		}

		activeOnly := true
		flag, err := validators.OptionalBool(r, "active_only")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if flag != nil {
			activeOnly = *flag
		}

		list, err := svc.List(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CategoryBySlug(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "categories service unavailable"))
			return
		}

		category, err := svc.GetBySlug(r.Context(), strings.TrimSpace(chi.URLParam(r, "slug")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

// ProductsList handles the catalog browse endpoint with filters, sort and paging.
func ProductsList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		filters, sort, params, err := parseListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListProducts(r.Context(), product.ListProductsInput{
			Filters:    filters,
			Sort:       sort,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ProductsSearch matches q against name, code, brand and description.
func ProductsSearch(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "q is required").WithDetails(map[string]any{"field": "q"}))
			return
		}

		filters, sort, params, err := parseListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.SearchProducts(r.Context(), product.SearchProductsInput{
			Query:      query,
			Filters:    filters,
			Sort:       sort,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ProductByID(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathInt64(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductByCode(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "code is required"))
			return
		}

		dto, err := svc.GetProductByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func parseListQuery(r *http.Request) (product.ProductListFilters, product.Sort, pagination.Params, error) {
	var (
		filters product.ProductListFilters
		sort    product.Sort
		err     error
	)

	if filters.CategoryID, err = validators.OptionalInt64(r, "category_id"); err != nil {
		return filters, sort, pagination.Params{}, err
	}
	q := r.URL.Query()
	filters.CategorySlug = strings.TrimSpace(q.Get("category_slug"))
	filters.Brand = strings.TrimSpace(q.Get("brand"))
	if filters.MinPrice, err = validators.OptionalAmount(r, "min_price"); err != nil {
		return filters, sort, pagination.Params{}, err
	}
	if filters.MaxPrice, err = validators.OptionalAmount(r, "max_price"); err != nil {
		return filters, sort, pagination.Params{}, err
	}
	if filters.InStock, err = validators.OptionalBool(r, "in_stock"); err != nil {
		return filters, sort, pagination.Params{}, err
	}
	if filters.Featured, err = validators.OptionalBool(r, "featured"); err != nil {
		return filters, sort, pagination.Params{}, err
	}
	if filters.IsNew, err = validators.OptionalBool(r, "is_new"); err != nil {
		return filters, sort, pagination.Params{}, err
	}

	if raw := strings.TrimSpace(q.Get("sort_by")); raw != "" {
		field, parseErr := enums.ParseProductSortField(raw)
		if parseErr != nil {
			return filters, sort, pagination.Params{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid sort_by").WithDetails(map[string]any{"field": "sort_by"})
		}
		sort.Field = field
	}
	if raw := strings.TrimSpace(q.Get("sort_order")); raw != "" {
		order, parseErr := enums.ParseSortOrder(raw)
		if parseErr != nil {
			return filters, sort, pagination.Params{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid sort_order").WithDetails(map[string]any{"field": "sort_order"})
		}
		sort.Order = order
	}

	params, err := pageParams(r)
	if err != nil {
		return filters, sort, pagination.Params{}, err
	}
	return filters, sort, params, nil
}

// BannersActive returns banners inside their display window.
func BannersActive(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banner service unavailable"))
			return
		}
		list, err := svc.Active(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func BannersAll(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banner service unavailable"))
			return
		}
		list, err := svc.All(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
