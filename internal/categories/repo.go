package categories

import (
	"context"

	"github.com/maldonadorepuestos/storefront/internal/repo"
	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads catalog categories.
type Repository struct {
	base repo.Base
}

// NewRepository builds a category repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// List returns categories ordered by display order then name.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	var rows []models.Category
	q := r.base.DB(ctx).Model(&models.Category{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("display_order ASC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindBySlug loads a single category.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.base.DB(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

type productCount struct {
	CategoryID int64
	Total      int64
}

// CountActiveProducts returns active product totals keyed by category id.
func (r *Repository) CountActiveProducts(ctx context.Context, categoryIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return counts, nil
	}
	var rows []productCount
	err := r.base.DB(ctx).
		Model(&models.Product{}).
		Select("category_id, COUNT(*) AS total").
		Where("is_active = ? AND category_id IN ?", true, categoryIDs).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CategoryID] = row.Total
	}
	return counts, nil
}
