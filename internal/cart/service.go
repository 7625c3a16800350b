package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// FreeShippingThreshold is the subtotal from which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(100000)
	// FlatShippingEstimate applies below FreeShippingThreshold.
	FlatShippingEstimate = decimal.NewFromInt(5000)
)

const (
	productNotFoundMessage = "Producto no encontrado"
	itemNotFoundMessage    = "Item no encontrado en el carrito"
)

// Service exposes the authenticated cart operations.
type Service interface {
	GetCart(ctx context.Context, userID int64) (*CartDTO, error)
	AddItem(ctx context.Context, userID int64, input AddItemInput) (*CartItemDTO, error)
	UpdateItem(ctx context.Context, userID, itemID int64, input UpdateItemInput) (*CartItemDTO, error)
	RemoveItem(ctx context.Context, userID, itemID int64) error
	Clear(ctx context.Context, userID int64) error
}

type service struct {
	repo CartRepository
}

// NewService builds a cart service backed by the provided repository.
func NewService(repo CartRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetCart(ctx context.Context, userID int64) (*CartDTO, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}

	cart := &CartDTO{Items: make([]CartItemDTO, 0, len(items)), Subtotal: decimal.Zero}
	for _, item := range items {
		line := newCartItemDTO(item, item.Product)
		cart.Subtotal = cart.Subtotal.Add(line.Subtotal)
		cart.Items = append(cart.Items, line)
	}
	cart.ItemsCount = len(cart.Items)
	cart.ShippingEstimate = ShippingEstimate(cart.Subtotal)
	cart.Total = cart.Subtotal.Add(cart.ShippingEstimate)
	return cart, nil
}

// ShippingEstimate is free at or above FreeShippingThreshold.
func ShippingEstimate(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingEstimate
}

func (s *service) AddItem(ctx context.Context, userID int64, input AddItemInput) (*CartItemDTO, error) {
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	var out CartItemDTO
	err := s.repo.Transaction(ctx, func(repo CartRepository) error {
		product, err := repo.FindProduct(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
		}

		existing, err := repo.FindByUserAndProduct(ctx, userID, product.ID)
		switch {
		case err == nil:
			next := existing.Quantity + quantity
			if err := checkStock(product, next); err != nil {
				return err
			}
			if err := repo.UpdateQuantity(ctx, existing.ID, next); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
			}
			existing.Quantity = next
			out = newCartItemDTO(*existing, product)
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
		}

		if err := checkStock(product, quantity); err != nil {
			return err
		}
		item := &models.CartItem{UserID: userID, ProductID: product.ID, Quantity: quantity}
		if err := repo.Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart item")
		}
		out = newCartItemDTO(*item, product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) UpdateItem(ctx context.Context, userID, itemID int64, input UpdateItemInput) (*CartItemDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.Validation("validation failed", pkgerrors.FieldErrors{"quantity": "must be at least 1"})
	}
	item, err := s.repo.FindByIDAndUser(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}
	if item.Product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	if err := checkStock(item.Product, input.Quantity); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateQuantity(ctx, item.ID, input.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	item.Quantity = input.Quantity
	dto := newCartItemDTO(*item, item.Product)
	return &dto, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID int64) error {
	deleted, err := s.repo.Delete(ctx, itemID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteAllByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

func checkStock(p *models.Product, quantity int) error {
	if p.Stock < quantity {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Stock insuficiente. Disponible: %d", p.Stock)).
			WithDetails(map[string]any{"available": p.Stock})
	}
	return nil
}
