package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maldonadorepuestos/storefront/internal/cart"
	"github.com/maldonadorepuestos/storefront/pkg/db"
	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
	"github.com/maldonadorepuestos/storefront/pkg/pagination"
)

const (
	orderNumberPrefix    = "MR"
	orderNotFoundMessage = "Pedido no encontrado"
	emptyCartMessage     = "El carrito está vacío"
)

// Service turns server carts into orders and manages them afterwards.
type Service interface {
	Create(ctx context.Context, userID int64, input CreateOrderInput) (*OrderDTO, error)
	ListMine(ctx context.Context, userID int64, params pagination.Params) (*OrderListResult, error)
	Get(ctx context.Context, userID, id int64) (*OrderDTO, error)
	List(ctx context.Context, input ListOrdersInput) (*OrderListResult, error)
	UpdateStatus(ctx context.Context, id int64, input UpdateStatusInput) (*OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// cartStore is satisfied by *cart.Repository.
type cartStore interface {
	WithTx(tx *gorm.DB) cart.CartRepository
}

type ServiceParams struct {
	Repo   Repository
	Cart   cartStore
	Tx     txRunner
	Logger *logger.Logger
}

type service struct {
	repo   Repository
	cart   cartStore
	tx     txRunner
	logg   *logger.Logger
	now    func() time.Time
	number func(time.Time) string
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, errors.New("orders repository required")
	case params.Cart == nil:
		return nil, errors.New("cart repository required")
	case params.Tx == nil:
		return nil, errors.New("transaction runner required")
	}
	return &service{
		repo:   params.Repo,
		cart:   params.Cart,
		tx:     params.Tx,
		logg:   params.Logger,
		now:    time.Now,
		number: newOrderNumber,
	}, nil
}

// newOrderNumber renders MR-YYYYMMDD-XXXXXXXX with eight random hex digits.
func newOrderNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, at.UTC().Format("20060102"), suffix)
}

// Create prices the caller's cart, takes the stock and empties the cart in
// one transaction. Any unavailable line aborts the whole order.
func (s *service) Create(ctx context.Context, userID int64, input CreateOrderInput) (*OrderDTO, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		lines := s.cart.WithTx(tx)
		repo := s.repo.WithTx(tx)

		items, err := lines.ListByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, emptyCartMessage)
		}

		order, err = s.priceCart(userID, items, input)
		if err != nil {
			return err
		}
		for _, item := range order.Items {
			ok, err := repo.TakeStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("Stock insuficiente para '%s'", item.ProductName))
			}
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		if err := lines.DeleteAllByUser(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, order.ID), "order_number", order.OrderNumber)
	s.logg.Info(logCtx, "order created")
	dto := FromModel(*order)
	return &dto, nil
}

func (s *service) priceCart(userID int64, lines []models.CartItem, input CreateOrderInput) (*models.Order, error) {
	now := s.now()
	order := &models.Order{
		UserID:          userID,
		OrderNumber:     s.number(now),
		Status:          enums.OrderStatusPending,
		Subtotal:        decimal.Zero,
		ShippingName:    trimmedOrNil(&input.ShippingName),
		ShippingAddress: trimmedOrNil(&input.ShippingAddress),
		ShippingCity:    trimmedOrNil(&input.ShippingCity),
		ShippingState:   trimmedOrNil(&input.ShippingState),
		ShippingZip:     trimmedOrNil(&input.ShippingZip),
		ShippingPhone:   trimmedOrNil(&input.ShippingPhone),
		Notes:           trimmedOrNil(input.Notes),
		Items:           make([]models.OrderItem, 0, len(lines)),
	}

	for _, line := range lines {
		p := line.Product
		if p == nil || !p.IsActive {
			name := fmt.Sprintf("#%d", line.ProductID)
			if p != nil {
				name = p.Name
			}
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("El producto '%s' ya no está disponible", name))
		}
		if !p.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("El producto '%s' se cotiza a pedido", p.Name)).
				WithDetails(map[string]any{"product_id": p.ID})
		}
		if p.Stock < line.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Stock insuficiente para '%s'. Disponible: %d", p.Name, p.Stock)).
				WithDetails(map[string]any{"product_id": p.ID, "available": p.Stock})
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		order.Subtotal = order.Subtotal.Add(lineTotal)
		order.Items = append(order.Items, models.OrderItem{
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductCode:  p.Code,
			ProductBrand: p.Brand,
			Quantity:     line.Quantity,
			UnitPrice:    p.Price,
			TotalPrice:   lineTotal,
		})
	}
	order.ShippingCost = cart.ShippingEstimate(order.Subtotal)
	order.Total = order.Subtotal.Add(order.ShippingCost)
	return order, nil
}

func (s *service) ListMine(ctx context.Context, userID int64, params pagination.Params) (*OrderListResult, error) {
	return s.list(ctx, &userID, nil, params)
}

// Get returns not found for orders owned by someone else.
func (s *service) Get(ctx context.Context, userID, id int64) (*OrderDTO, error) {
	order, err := s.repo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	dto := FromModel(*order)
	return &dto, nil
}

func (s *service) List(ctx context.Context, input ListOrdersInput) (*OrderListResult, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.Validation("validation failed", pkgerrors.FieldErrors{"status": "is invalid"})
	}
	return s.list(ctx, nil, input.Status, input.Pagination)
}

func (s *service) list(ctx context.Context, userID *int64, status *enums.OrderStatus, params pagination.Params) (*OrderListResult, error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, userID, status, params.Offset(), params.PageSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	items := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromModel(row))
	}
	page := pagination.NewPage(items, total, params)
	return &page, nil
}

// UpdateStatus moves an order to a new status. Shipping and payment stamp
// their timestamps once. Cancelling returns the stock and is final.
func (s *service) UpdateStatus(ctx context.Context, id int64, input UpdateStatusInput) (*OrderDTO, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.Validation("validation failed", pkgerrors.FieldErrors{"status": "is invalid"})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "load order")
		}
		if order.Status.IsTerminal() && order.Status != input.Status {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "El pedido está cancelado")
		}

		now := s.now().UTC()
		fields := map[string]any{"status": input.Status}
		if note := trimmedOrNil(input.Notes); note != nil {
			fields["notes"] = appendAdminNote(order.Notes, *note)
		}
		switch {
		case input.Status == enums.OrderStatusShipped && order.ShippedAt == nil:
			fields["shipped_at"] = now
		case input.Status == enums.OrderStatusPaid && order.PaidAt == nil:
			fields["paid_at"] = now
		case input.Status == enums.OrderStatusCancelled && order.Status != enums.OrderStatusCancelled:
			for _, item := range order.Items {
				if err := repo.ReturnStock(ctx, item.ProductID, item.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "return stock")
				}
			}
		}
		if err := repo.Update(ctx, id, fields); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	logCtx := s.logg.WithField(s.logg.WithOrderID(ctx, id), "status", string(input.Status))
	s.logg.Info(logCtx, "order status updated")
	dto := FromModel(*updated)
	return &dto, nil
}

func appendAdminNote(existing *string, note string) string {
	line := "[Admin] " + note
	if existing == nil || strings.TrimSpace(*existing) == "" {
		return line
	}
	return *existing + "\n" + line
}

func notFoundOr(err error, action string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, orderNotFoundMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
