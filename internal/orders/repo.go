package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/maldonadorepuestos/storefront/internal/repo"
	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
)

// Repository defines persistence operations for orders and the stock they
// consume.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	FindByIDAndUser(ctx context.Context, id, userID int64) (*models.Order, error)
	List(ctx context.Context, userID *int64, status *enums.OrderStatus, offset, limit int) ([]models.Order, int64, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	TakeStock(ctx context.Context, productID int64, quantity int) (bool, error)
	ReturnStock(ctx context.Context, productID int64, quantity int) error
}

type repository struct {
	base repo.Base
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

// Create inserts the order together with its items.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.base.DB(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.base.DB(ctx).
		Preload("Items", itemsInOrder).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDAndUser hides orders of other users behind not found.
func (r *repository) FindByIDAndUser(ctx context.Context, id, userID int64) (*models.Order, error) {
	var order models.Order
	err := r.base.DB(ctx).
		Preload("Items", itemsInOrder).
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List pages orders newest first. A nil userID lists every user.
func (r *repository) List(ctx context.Context, userID *int64, status *enums.OrderStatus, offset, limit int) ([]models.Order, int64, error) {
	query := r.base.DB(ctx).Model(&models.Order{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := query.
		Preload("Items", itemsInOrder).
		Order("created_at DESC").
		Order("id DESC").
		Scopes(repo.Paginate(offset, limit)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Update(ctx context.Context, id int64, fields map[string]any) error {
	return r.base.DB(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// TakeStock decrements stock only when enough is left and reports whether it
// did.
func (r *repository) TakeStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	res := r.base.DB(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ReturnStock(ctx context.Context, productID int64, quantity int) error {
	return r.base.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity)).Error
}

func itemsInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
