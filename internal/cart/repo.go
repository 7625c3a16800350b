package cart

import (
	"context"
	"time"

	"github.com/maldonadorepuestos/storefront/internal/repo"
	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes persistence operations for server-side cart lines.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{base: repo.NewBase(tx)}
}

// Transaction runs fn with a repository scoped to a single transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(CartRepository) error) error {
	return r.base.Transaction(ctx, func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// ListByUser returns the user's lines, newest first, with products loaded.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.base.DB(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindByUserAndProduct returns the line holding productID, if any.
func (r *Repository) FindByUserAndProduct(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := r.base.DB(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDAndUser scopes a line lookup to its owner.
func (r *Repository) FindByIDAndUser(ctx context.Context, id, userID int64) (*models.CartItem, error) {
	var item models.CartItem
	err := r.base.DB(ctx).
		Preload("Product").
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) FindProduct(ctx context.Context, productID int64) (*models.Product, error) {
	var product models.Product
	if err := r.base.DB(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) Create(ctx context.Context, item *models.CartItem) error {
	return r.base.DB(ctx).Create(item).Error
}

func (r *Repository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	return r.base.DB(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

// Delete removes a line owned by userID and reports whether one existed.
func (r *Repository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	res := r.base.DB(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) DeleteAllByUser(ctx context.Context, userID int64) error {
	return r.base.DB(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// DeleteStaleBefore removes every line not touched since cutoff, across all
// users. tx may be nil to run outside a transaction.
func (r *Repository) DeleteStaleBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := r.base.DB(ctx)
	if tx != nil {
		conn = tx.WithContext(ctx)
	}
	res := conn.Where("updated_at < ?", cutoff).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	Transaction(ctx context.Context, fn func(CartRepository) error) error
	ListByUser(ctx context.Context, userID int64) ([]models.CartItem, error)
	FindByUserAndProduct(ctx context.Context, userID, productID int64) (*models.CartItem, error)
	FindByIDAndUser(ctx context.Context, id, userID int64) (*models.CartItem, error)
	FindProduct(ctx context.Context, productID int64) (*models.Product, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	Delete(ctx context.Context, id, userID int64) (bool, error)
	DeleteAllByUser(ctx context.Context, userID int64) error
}
