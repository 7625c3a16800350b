package banners

import (
	"context"
	"fmt"
	"time"

	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
)

type repository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Banner, error)
}

// Service lists hero banners.
type Service interface {
	// Active returns the banners visible right now.
	Active(ctx context.Context) ([]BannerDTO, error)
	// All returns every banner, including inactive and expired ones.
	All(ctx context.Context) ([]BannerDTO, error)
}

type service struct {
	repo repository
	now  func() time.Time
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("banner repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Active(ctx context.Context) ([]BannerDTO, error) {
	rows, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list banners")
	}
	now := s.now().UTC()
	out := make([]BannerDTO, 0, len(rows))
	for _, row := range rows {
		if row.ActiveAt(now) {
			out = append(out, FromModel(row))
		}
	}
	return out, nil
}

func (s *service) All(ctx context.Context) ([]BannerDTO, error) {
	rows, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list banners")
	}
	out := make([]BannerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}
