package items

import (
	"context"
	"fmt"

	"github.com/meridian-dms/meridian-dms/internal/masterdata/shared"
	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Item, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	if id <= 0 {
		return Item{}, fmt.Errorf("%w: invalid item ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, item Item) (Item, error) {
	if err := s.validate(item); err != nil {
		return Item{}, err
	}
	prices := ComputePrices(item.UnitPrice, item.Discount1, item.Discount2)
	item.SecondPrice = prices.SecondPrice
	item.WholesalePrice = prices.WholesalePrice
	return s.repo.Create(ctx, item)
}

func (s *Service) Update(ctx context.Context, id int64, item Item) (Item, error) {
	if id <= 0 {
		return Item{}, fmt.Errorf("%w: invalid item ID", httpx.ErrValidation)
	}
	if err := s.validate(item); err != nil {
		return Item{}, err
	}
	prices := ComputePrices(item.UnitPrice, item.Discount1, item.Discount2)
	item.SecondPrice = prices.SecondPrice
	item.WholesalePrice = prices.WholesalePrice
	if err := s.repo.Update(ctx, id, item); err != nil {
		return Item{}, err
	}
	item.ID = id
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid item ID", httpx.ErrValidation)
	}
	return s.repo.SoftDelete(ctx, id)
}
