package quotes

import (
	"context"

	"gorm.io/gorm"

	"github.com/maldonadorepuestos/storefront/internal/repo"
	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
)

// QuoteRepository is the persistence surface the service depends on.
type QuoteRepository interface {
	WithTx(tx *gorm.DB) QuoteRepository
	Create(ctx context.Context, quote *models.Quote) error
	FindByID(ctx context.Context, id int64) (*models.Quote, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Quote, error)
	List(ctx context.Context, status *enums.QuoteStatus, offset, limit int) ([]models.Quote, int64, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
}

type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) WithTx(tx *gorm.DB) QuoteRepository {
	if tx == nil {
		return r
	}
	return &Repository{base: repo.NewBase(tx)}
}

// Create inserts the quote and its items in one statement batch.
func (r *Repository) Create(ctx context.Context, quote *models.Quote) error {
	return r.base.DB(ctx).Create(quote).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Quote, error) {
	var quote models.Quote
	err := r.base.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.Quote, error) {
	var rows []models.Quote
	err := r.base.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) List(ctx context.Context, status *enums.QuoteStatus, offset, limit int) ([]models.Quote, int64, error) {
	query := r.base.DB(ctx).Model(&models.Quote{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Quote
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC").
		Order("id DESC").
		Scopes(repo.Paginate(offset, limit)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) Update(ctx context.Context, id int64, fields map[string]any) error {
	return r.base.DB(ctx).
		Model(&models.Quote{}).
		Where("id = ?", id).
		Updates(fields).Error
}
