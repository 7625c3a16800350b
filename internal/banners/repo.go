package banners

import (
	"context"

	"github.com/maldonadorepuestos/storefront/internal/repo"
	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// List returns banners by slide order then newest first.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	q := r.base.DB(ctx).Model(&models.Banner{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rows []models.Banner
	err := q.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
