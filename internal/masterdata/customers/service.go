package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-dms/meridian-dms/internal/masterdata/shared"
	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, fmt.Errorf("%w: invalid customer ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, customer Customer) (Customer, error) {
	if err := s.validate(customer); err != nil {
		return Customer{}, err
	}
	return s.repo.Create(ctx, customer)
}

func (s *Service) Update(ctx context.Context, id int64, customer Customer) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid customer ID", httpx.ErrValidation)
	}
	if err := s.validate(customer); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, customer)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid customer ID", httpx.ErrValidation)
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) validate(c Customer) error {
	if strings.TrimSpace(c.Code) == "" {
		return fmt.Errorf("%w: customer code is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: customer name is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("%w: customer address is required", httpx.ErrValidation)
	}
	return nil
}
