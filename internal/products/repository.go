package product

import (
	"context"
	"strings"

	"github.com/maldonadorepuestos/storefront/internal/repo"
	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wires together the product read paths.
type Repository struct {
	base repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// listQuery is the repository-level view of a listing or search.
type listQuery struct {
	Text    string
	Filters ProductListFilters
	Sort    Sort
	Offset  int
	Limit   int
}

// List returns one page of active products plus the unpaged total.
func (r *Repository) List(ctx context.Context, q listQuery) ([]models.Product, int64, error) {
	base := r.base.DB(ctx).Model(&models.Product{}).Where("products.is_active = ?", true)
	base = applyFilters(base, q.Filters)
	if text := strings.TrimSpace(q.Text); text != "" {
		like := "%" + strings.ToLower(text) + "%"
		base = base.Where(
			"LOWER(products.name) LIKE ? OR LOWER(products.code) LIKE ? OR LOWER(products.brand) LIKE ? OR LOWER(COALESCE(products.description, '')) LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := base.
		Preload("Category").
		Preload("Images", orderImages).
		Order(clause.OrderByColumn{
			Column: clause.Column{Table: "products", Name: string(q.Sort.Field)},
			Desc:   q.Sort.Order == enums.SortDesc,
		}).
		Order("products.id ASC").
		Scopes(repo.Paginate(q.Offset, q.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindByID loads the product with its category and gallery.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.base.DB(ctx).
		Preload("Category").
		Preload("Images", orderImages).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByCode loads the product by its catalog code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	err := r.base.DB(ctx).
		Preload("Category").
		Preload("Images", orderImages).
		Where("code = ?", code).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func applyFilters(q *gorm.DB, f ProductListFilters) *gorm.DB {
	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	} else if slug := strings.TrimSpace(f.CategorySlug); slug != "" {
		q = q.Where("products.category_id IN (SELECT id FROM categories WHERE slug = ?)", slug)
	}
	if brand := strings.TrimSpace(f.Brand); brand != "" {
		q = q.Where("LOWER(products.brand) LIKE ?", "%"+strings.ToLower(brand)+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}
	if f.InStock != nil {
		if *f.InStock {
			q = q.Where("products.stock > 0")
		} else {
			q = q.Where("products.stock = 0")
		}
	}
	if f.Featured != nil {
		q = q.Where("products.is_featured = ?", *f.Featured)
	}
	if f.IsNew != nil {
		q = q.Where("products.is_new = ?", *f.IsNew)
	}
	return q
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC").Order("id ASC")
}
