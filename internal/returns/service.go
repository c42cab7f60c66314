package returns

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/meridian-dms/meridian-dms/internal/distribution"
	"github.com/meridian-dms/meridian-dms/internal/sales"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetOrderForReturn(ctx context.Context, orderID int64) (sales.Order, []sales.OrderLine, error)
	SupplierExists(ctx context.Context, id int64) (bool, error)
	ListCustomerReturns(ctx context.Context) ([]CustomerReturn, map[int64][]CustomerReturnLine, error)
	ListSupplierReturns(ctx context.Context) ([]SupplierReturn, map[int64][]SupplierReturnLine, error)
	GetNonSalableItems(ctx context.Context) ([]NonSalableItem, error)
}

// Service orchestrates both return flows.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService constructs returns service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CustomerReturnLineInput describes one returned item.
type CustomerReturnLineInput struct {
	ItemID    int64
	Qty       float64
	IsSalable bool
	Reason    string
}

// SupplierReturnLineInput describes one item going back to the supplier.
type SupplierReturnLineInput struct {
	ItemID int64
	Qty    float64
	Reason string
}

// CreateCustomerReturn records a return against an order. The return value is
// priced from the order lines, stored on the header and deducted from the
// order total. Salable lines go back into stock; order line quantities are
// reduced either way.
func (s *Service) CreateCustomerReturn(ctx context.Context, orderID int64, lines []CustomerReturnLineInput) (CustomerReturn, error) {
	if len(lines) == 0 {
		return CustomerReturn{}, fmt.Errorf("%w: at least one line required", ErrValidation)
	}
	order, orderLines, err := s.repo.GetOrderForReturn(ctx, orderID)
	if err != nil {
		return CustomerReturn{}, err
	}

	byItem := make(map[int64]sales.OrderLine, len(orderLines))
	for _, line := range orderLines {
		byItem[line.ItemID] = line
	}

	var total float64
	for _, line := range lines {
		if line.ItemID == 0 || line.Qty <= 0 {
			return CustomerReturn{}, fmt.Errorf("%w: line item and quantity required", ErrValidation)
		}
		sold, ok := byItem[line.ItemID]
		if !ok {
			return CustomerReturn{}, fmt.Errorf("%w: item %d is not on order %s", ErrValidation, line.ItemID, order.Code)
		}
		total += line.Qty * sold.ItemPrice * (1 - sold.Discount1/100) * (1 - sold.Discount2/100)
	}
	total = round2(total)

	ret := CustomerReturn{OrderID: orderID, Status: StatusPending, TotalAmount: total}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		retID, err := tx.CreateCustomerReturn(ctx, ret)
		if err != nil {
			return err
		}
		ret.ID = retID
		for _, line := range lines {
			if err := tx.InsertCustomerReturnLine(ctx, CustomerReturnLine{
				ReturnID:  retID,
				ItemID:    line.ItemID,
				Qty:       line.Qty,
				IsSalable: line.IsSalable,
				Reason:    line.Reason,
			}); err != nil {
				return err
			}
			if err := tx.ReduceOrderLineQty(ctx, orderID, line.ItemID, line.Qty); err != nil {
				return err
			}
			if !line.IsSalable {
				continue
			}
			if _, err := tx.UpsertStock(ctx, line.ItemID, line.Qty); err != nil {
				return err
			}
			if err := tx.InsertStockUpdate(ctx, distribution.StockUpdate{
				ItemID:    line.ItemID,
				QtyChange: line.Qty,
				Type:      distribution.UpdateTypeCustomerReturn,
				RefCode:   fmt.Sprintf("CR:%d", retID),
			}); err != nil {
				return err
			}
		}
		return tx.ReduceOrderTotal(ctx, orderID, total)
	})
	if err != nil {
		return CustomerReturn{}, err
	}
	s.logger.Info("customer return created", "return_id", ret.ID, "order_id", orderID, "total", total)
	return ret, nil
}

// CreateSupplierReturn records goods sent back to a supplier. Every line
// leaves stock regardless of condition.
func (s *Service) CreateSupplierReturn(ctx context.Context, supplierID int64, lines []SupplierReturnLineInput) (SupplierReturn, error) {
	if len(lines) == 0 {
		return SupplierReturn{}, fmt.Errorf("%w: at least one line required", ErrValidation)
	}
	exists, err := s.repo.SupplierExists(ctx, supplierID)
	if err != nil {
		return SupplierReturn{}, err
	}
	if !exists {
		return SupplierReturn{}, fmt.Errorf("%w: supplier %d", ErrNotFound, supplierID)
	}

	ret := SupplierReturn{SupplierID: supplierID, Status: StatusPending}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		retID, err := tx.CreateSupplierReturn(ctx, ret)
		if err != nil {
			return err
		}
		ret.ID = retID
		for _, line := range lines {
			if line.ItemID == 0 || line.Qty <= 0 {
				return fmt.Errorf("%w: line item and quantity required", ErrValidation)
			}
			if err := tx.InsertSupplierReturnLine(ctx, SupplierReturnLine{
				ReturnID: retID,
				ItemID:   line.ItemID,
				Qty:      line.Qty,
				Reason:   line.Reason,
			}); err != nil {
				return err
			}
			if _, err := tx.UpsertStock(ctx, line.ItemID, -line.Qty); err != nil {
				return err
			}
			if err := tx.InsertStockUpdate(ctx, distribution.StockUpdate{
				ItemID:    line.ItemID,
				QtyChange: -line.Qty,
				Type:      distribution.UpdateTypeSupplierReturn,
				RefCode:   fmt.Sprintf("SR:%d", retID),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SupplierReturn{}, err
	}
	s.logger.Info("supplier return created", "return_id", ret.ID, "supplier_id", supplierID)
	return ret, nil
}

func (s *Service) ListCustomerReturns(ctx context.Context) ([]CustomerReturn, map[int64][]CustomerReturnLine, error) {
	return s.repo.ListCustomerReturns(ctx)
}

func (s *Service) ListSupplierReturns(ctx context.Context) ([]SupplierReturn, map[int64][]SupplierReturnLine, error) {
	return s.repo.ListSupplierReturns(ctx)
}

func (s *Service) GetNonSalableItems(ctx context.Context) ([]NonSalableItem, error) {
	return s.repo.GetNonSalableItems(ctx)
}

// UpdateCustomerReturnStatus moves the return between pending and processed.
func (s *Service) UpdateCustomerReturnStatus(ctx context.Context, id int64, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SetCustomerReturnStatus(ctx, id, status)
	})
}

// UpdateSupplierReturnStatus moves the return between pending and processed.
func (s *Service) UpdateSupplierReturnStatus(ctx context.Context, id int64, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SetSupplierReturnStatus(ctx, id, status)
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
