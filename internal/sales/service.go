package sales

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-dms/meridian-dms/internal/distribution"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	CustomerExists(ctx context.Context, id int64) (bool, error)
	GetOrder(ctx context.Context, id int64) (Order, []OrderLine, error)
	ListOrders(ctx context.Context, filters ListFilters) ([]Order, error)
}

// Service orchestrates the customer order flow.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService constructs sales service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// OrderLineInput describes one sold item.
type OrderLineInput struct {
	ItemID    int64
	Qty       float64
	Discount1 float64
	Discount2 float64
	ItemPrice float64
}

// CreateOrderInput describes creation payload. TotalAmount is advisory: the
// authoritative total is recomputed from the lines.
type CreateOrderInput struct {
	Code          string
	CustomerID    int64
	PaymentMethod PaymentMethod
	OrderDate     time.Time
	Discount      float64
	TotalAmount   float64
	Lines         []OrderLineInput
}

// PaymentState reports paid and outstanding after a payment mutation.
type PaymentState struct {
	OrderID     int64   `json:"order_id"`
	PaidAmount  float64 `json:"paid_amount"`
	Outstanding float64 `json:"outstanding"`
}

func validateLines(lines []OrderLineInput) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: at least one line required", ErrValidation)
	}
	for _, line := range lines {
		if line.ItemID == 0 || line.Qty <= 0 {
			return fmt.Errorf("%w: line item and quantity required", ErrValidation)
		}
		if line.ItemPrice < 0 {
			return fmt.Errorf("%w: item price must not be negative", ErrValidation)
		}
		if line.Discount1 < 0 || line.Discount1 > 100 || line.Discount2 < 0 || line.Discount2 > 100 {
			return fmt.Errorf("%w: discounts must be between 0 and 100", ErrValidation)
		}
	}
	return nil
}

func computeTotal(lines []OrderLineInput) float64 {
	var total float64
	for _, line := range lines {
		total += OrderLine{Qty: line.Qty, ItemPrice: line.ItemPrice, Discount1: line.Discount1, Discount2: line.Discount2}.LineTotal()
	}
	return round2(total)
}

// CreateOrder persists the order and decrements stock for every line in one
// transaction. An item with no stock row starts from zero; the balance may go
// negative, which is reported rather than rejected.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (Order, error) {
	if !ValidPaymentMethod(input.PaymentMethod) {
		return Order{}, fmt.Errorf("%w: unknown payment method %q", ErrValidation, input.PaymentMethod)
	}
	if input.Discount < 0 {
		return Order{}, fmt.Errorf("%w: discount must not be negative", ErrValidation)
	}
	if err := validateLines(input.Lines); err != nil {
		return Order{}, err
	}
	exists, err := s.repo.CustomerExists(ctx, input.CustomerID)
	if err != nil {
		return Order{}, err
	}
	if !exists {
		return Order{}, fmt.Errorf("%w: customer %d", ErrNotFound, input.CustomerID)
	}
	if input.Code == "" {
		input.Code = fmt.Sprintf("ORD-%d", time.Now().UnixNano())
	}

	total := computeTotal(input.Lines)
	if input.TotalAmount != 0 && input.TotalAmount != total {
		s.logger.Debug("client total disputed", "code", input.Code, "client_total", input.TotalAmount, "computed_total", total)
	}

	order := Order{
		Code:          input.Code,
		CustomerID:    input.CustomerID,
		PaymentMethod: input.PaymentMethod,
		TotalAmount:   total,
		Discount:      input.Discount,
		PaymentStatus: PaymentStatusPending,
		OrderDate:     defaultTime(input.OrderDate),
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		orderID, err := tx.CreateOrder(ctx, order)
		if err != nil {
			return err
		}
		order.ID = orderID
		for _, line := range input.Lines {
			if err := tx.InsertOrderLine(ctx, OrderLine{
				OrderID:   orderID,
				ItemID:    line.ItemID,
				Qty:       line.Qty,
				Discount1: line.Discount1,
				Discount2: line.Discount2,
				ItemPrice: line.ItemPrice,
			}); err != nil {
				return err
			}
			if _, err := tx.UpsertStock(ctx, line.ItemID, -line.Qty); err != nil {
				return err
			}
			if err := tx.InsertStockUpdate(ctx, distribution.StockUpdate{
				ItemID:    line.ItemID,
				QtyChange: -line.Qty,
				Type:      distribution.UpdateTypeOrder,
				RefCode:   order.Code,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	s.logger.Info("order created", "order_id", order.ID, "code", order.Code, "total", order.TotalAmount)
	return order, nil
}

// UpdateOrderInput describes the full-order update payload.
type UpdateOrderInput struct {
	CustomerID    int64
	PaymentMethod PaymentMethod
	OrderDate     time.Time
	Discount      float64
	Lines         []OrderLineInput
}

// UpdateOrder replaces the order lines and recomputes the total. Stock for
// the old lines is credited back before the new lines are debited. A cash
// order receives the whole-order cash discount.
func (s *Service) UpdateOrder(ctx context.Context, id int64, input UpdateOrderInput) (Order, error) {
	if !ValidPaymentMethod(input.PaymentMethod) {
		return Order{}, fmt.Errorf("%w: unknown payment method %q", ErrValidation, input.PaymentMethod)
	}
	if err := validateLines(input.Lines); err != nil {
		return Order{}, err
	}
	exists, err := s.repo.CustomerExists(ctx, input.CustomerID)
	if err != nil {
		return Order{}, err
	}
	if !exists {
		return Order{}, fmt.Errorf("%w: customer %d", ErrNotFound, input.CustomerID)
	}
	existing, oldLines, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}

	total := computeTotal(input.Lines)
	discount := input.Discount
	if input.PaymentMethod == PaymentCash {
		discount = round2(total * CashDiscountPercent / 100)
	}

	updated := Order{
		ID:            id,
		Code:          existing.Code,
		CustomerID:    input.CustomerID,
		PaymentMethod: input.PaymentMethod,
		TotalAmount:   total,
		Discount:      discount,
		OrderDate:     defaultTime(input.OrderDate),
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, line := range oldLines {
			if _, err := tx.UpsertStock(ctx, line.ItemID, line.Qty); err != nil {
				return err
			}
			if err := tx.InsertStockUpdate(ctx, distribution.StockUpdate{
				ItemID:    line.ItemID,
				QtyChange: line.Qty,
				Type:      distribution.UpdateTypeOrder,
				RefCode:   existing.Code,
			}); err != nil {
				return err
			}
		}
		if err := tx.DeleteOrderLines(ctx, id); err != nil {
			return err
		}
		for _, line := range input.Lines {
			if err := tx.InsertOrderLine(ctx, OrderLine{
				OrderID:   id,
				ItemID:    line.ItemID,
				Qty:       line.Qty,
				Discount1: line.Discount1,
				Discount2: line.Discount2,
				ItemPrice: line.ItemPrice,
			}); err != nil {
				return err
			}
			if _, err := tx.UpsertStock(ctx, line.ItemID, -line.Qty); err != nil {
				return err
			}
			if err := tx.InsertStockUpdate(ctx, distribution.StockUpdate{
				ItemID:    line.ItemID,
				QtyChange: -line.Qty,
				Type:      distribution.UpdateTypeOrder,
				RefCode:   existing.Code,
			}); err != nil {
				return err
			}
		}
		return tx.UpdateOrderHeader(ctx, updated)
	})
	if err != nil {
		return Order{}, err
	}
	s.logger.Info("order updated", "order_id", id, "total", updated.TotalAmount, "discount", updated.Discount)
	return updated, nil
}

// UpdatePaidAmount adds delta to the order's paid amount. Payments are
// cumulative; overpayment is not rejected.
func (s *Service) UpdatePaidAmount(ctx context.Context, id int64, delta float64) (PaymentState, error) {
	if delta <= 0 {
		return PaymentState{}, fmt.Errorf("%w: paid amount must be positive", ErrValidation)
	}
	var state PaymentState
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.AddPaidAmount(ctx, id, delta)
		if err != nil {
			return err
		}
		state = PaymentState{OrderID: order.ID, PaidAmount: order.PaidAmount, Outstanding: order.Outstanding()}
		return nil
	})
	if err != nil {
		return PaymentState{}, err
	}
	s.logger.Info("payment recorded", "order_id", id, "delta", delta, "paid", state.PaidAmount)
	return state, nil
}

// UpdatePaymentStatus overwrites the payment status.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, status PaymentStatus) error {
	if !ValidPaymentStatus(status) {
		return fmt.Errorf("%w: unknown payment status %q", ErrValidation, status)
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SetPaymentStatus(ctx, id, status)
	})
}

// DeleteOrder soft deletes the order. Sold stock is not restocked.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SoftDeleteOrder(ctx, id)
	})
}

func (s *Service) GetOrder(ctx context.Context, id int64) (Order, []OrderLine, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, filters ListFilters) ([]Order, error) {
	return s.repo.ListOrders(ctx, filters)
}

func defaultTime(value time.Time) time.Time {
	if value.IsZero() {
		return time.Now()
	}
	return value
}
