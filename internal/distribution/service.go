package distribution

import (
	"context"
	"fmt"
	"log/slog"
)

// RepositoryPort abstracts persistence for the service layer.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetByItem(ctx context.Context, itemID int64) (Detail, error)
	Get(ctx context.Context, id int64) (Detail, error)
	List(ctx context.Context) ([]Detail, error)
	ListStockUpdates(ctx context.Context, filter StockUpdateFilter) ([]StockUpdate, error)
}

// Service exposes stock reads, manual corrections and the movement history.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetByItem(ctx context.Context, itemID int64) (Detail, error) {
	return s.repo.GetByItem(ctx, itemID)
}

func (s *Service) List(ctx context.Context) ([]Detail, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListStockUpdates(ctx context.Context, filter StockUpdateFilter) ([]StockUpdate, error) {
	return s.repo.ListStockUpdates(ctx, filter)
}

// SetStock overwrites the in-stock amount of an existing stock row and records
// a MANUAL movement holding the delta against the previous amount. Negative
// amounts are allowed; stock below zero is reported, not rejected.
func (s *Service) SetStock(ctx context.Context, id int64, amount float64) (Detail, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		itemID, err := tx.SetStock(ctx, id, amount)
		if err != nil {
			return err
		}
		return tx.InsertStockUpdate(ctx, StockUpdate{
			ItemID:    itemID,
			QtyChange: amount - current.InStock,
			Type:      UpdateTypeManual,
			RefCode:   fmt.Sprintf("MANUAL:%d", id),
		})
	})
	if err != nil {
		return Detail{}, err
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	s.logger.Info("stock adjusted manually", "distribution_id", id, "amount", amount)
	return updated, nil
}
