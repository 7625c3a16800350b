package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"gorm.io/gorm"
)

type repository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	CountActiveProducts(ctx context.Context, categoryIDs []int64) (map[int64]int64, error)
}

// Service exposes the category read paths.
type Service interface {
	List(ctx context.Context, activeOnly bool) ([]CategoryDTO, error)
	GetBySlug(ctx context.Context, slug string) (*CategoryDTO, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]CategoryDTO, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	counts, err := s.repo.CountActiveProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}

	out := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row, counts[row.ID]))
	}
	return out, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*CategoryDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	category, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Categoría no encontrada")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	counts, err := s.repo.CountActiveProducts(ctx, []int64{category.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}
	dto := FromModel(*category, counts[category.ID])
	return &dto, nil
}
