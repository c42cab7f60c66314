package sales

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-dms/meridian-dms/internal/distribution"
)

type memoryOrderRepo struct {
	customers map[int64]bool
	orders    map[int64]Order
	lines     map[int64][]OrderLine
	stock     map[int64]float64
	updates   []distribution.StockUpdate
	nextID    int64
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{
		customers: map[int64]bool{1: true},
		orders:    make(map[int64]Order),
		lines:     make(map[int64][]OrderLine),
		stock:     make(map[int64]float64),
	}
}

func (r *memoryOrderRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryOrderRepo) CustomerExists(ctx context.Context, id int64) (bool, error) {
	return r.customers[id], nil
}

func (r *memoryOrderRepo) GetOrder(ctx context.Context, id int64) (Order, []OrderLine, error) {
	order, ok := r.orders[id]
	if !ok || order.Deleted {
		return Order{}, nil, ErrNotFound
	}
	return order, r.lines[id], nil
}

func (r *memoryOrderRepo) ListOrders(ctx context.Context, filters ListFilters) ([]Order, error) {
	var out []Order
	for _, o := range r.orders {
		if o.Deleted {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *memoryOrderRepo) CreateOrder(ctx context.Context, order Order) (int64, error) {
	r.nextID++
	order.ID = r.nextID
	r.orders[order.ID] = order
	return order.ID, nil
}

func (r *memoryOrderRepo) InsertOrderLine(ctx context.Context, line OrderLine) error {
	r.lines[line.OrderID] = append(r.lines[line.OrderID], line)
	return nil
}

func (r *memoryOrderRepo) DeleteOrderLines(ctx context.Context, orderID int64) error {
	delete(r.lines, orderID)
	return nil
}

func (r *memoryOrderRepo) UpdateOrderHeader(ctx context.Context, order Order) error {
	existing, ok := r.orders[order.ID]
	if !ok || existing.Deleted {
		return ErrNotFound
	}
	order.Code = existing.Code
	order.PaidAmount = existing.PaidAmount
	order.PaymentStatus = existing.PaymentStatus
	r.orders[order.ID] = order
	return nil
}

func (r *memoryOrderRepo) SoftDeleteOrder(ctx context.Context, id int64) error {
	order, ok := r.orders[id]
	if !ok || order.Deleted {
		return ErrNotFound
	}
	order.Deleted = true
	r.orders[id] = order
	return nil
}

func (r *memoryOrderRepo) AddPaidAmount(ctx context.Context, id int64, delta float64) (Order, error) {
	order, ok := r.orders[id]
	if !ok || order.Deleted {
		return Order{}, ErrNotFound
	}
	order.PaidAmount += delta
	r.orders[id] = order
	return order, nil
}

func (r *memoryOrderRepo) SetPaymentStatus(ctx context.Context, id int64, status PaymentStatus) error {
	order, ok := r.orders[id]
	if !ok || order.Deleted {
		return ErrNotFound
	}
	order.PaymentStatus = status
	r.orders[id] = order
	return nil
}

func (r *memoryOrderRepo) UpsertStock(ctx context.Context, itemID int64, qtyChange float64) (float64, error) {
	r.stock[itemID] += qtyChange
	return r.stock[itemID], nil
}

func (r *memoryOrderRepo) InsertStockUpdate(ctx context.Context, update distribution.StockUpdate) error {
	r.updates = append(r.updates, update)
	return nil
}

func newTestService(repo *memoryOrderRepo) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateOrderRecomputesTotal(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo)

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID:    1,
		PaymentMethod: PaymentCredit,
		// advisory total disagrees with the lines and must lose
		TotalAmount: 999,
		Lines: []OrderLineInput{
			{ItemID: 7, Qty: 2, ItemPrice: 100, Discount1: 10, Discount2: 5},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 171.0, created.TotalAmount)
}

func TestCreateOrderDecrementsStock(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo)
	repo.stock[7] = 15

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID:    1,
		PaymentMethod: PaymentCash,
		Lines:         []OrderLineInput{{ItemID: 7, Qty: 5, ItemPrice: 10}},
	})
	require.NoError(t, err)
	require.Equal(t, 10.0, repo.stock[7])
	require.Len(t, repo.updates, 1)
	require.Equal(t, distribution.UpdateTypeOrder, repo.updates[0].Type)
	require.Equal(t, -5.0, repo.updates[0].QtyChange)
}

func TestCreateOrderAbsentStockStartsAtZero(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID:    1,
		PaymentMethod: PaymentCheque,
		Lines:         []OrderLineInput{{ItemID: 9, Qty: 3, ItemPrice: 10}},
	})
	require.NoError(t, err)
	require.Equal(t, -3.0, repo.stock[9])
}

func TestCreateOrderUnknownCustomer(t *testing.T) {
	svc := newTestService(newMemoryOrderRepo())

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID:    42,
		PaymentMethod: PaymentCash,
		Lines:         []OrderLineInput{{ItemID: 7, Qty: 1, ItemPrice: 10}},
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrderRejectsUnknownPaymentMethod(t *testing.T) {
	svc := newTestService(newMemoryOrderRepo())

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID:    1,
		PaymentMethod: PaymentMethod("barter"),
		Lines:         []OrderLineInput{{ItemID: 7, Qty: 1, ItemPrice: 10}},
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdatePaidAmountIsAdditive(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo)

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID:    1,
		PaymentMethod: PaymentCredit,
		Lines:         []OrderLineInput{{ItemID: 7, Qty: 5, ItemPrice: 100}},
	})
	require.NoError(t, err)

	state, err := svc.UpdatePaidAmount(context.Background(), created.ID, 100)
	require.NoError(t, err)
	require.Equal(t, 100.0, state.PaidAmount)

	state, err = svc.UpdatePaidAmount(context.Background(), created.ID, 100)
	require.NoError(t, err)
	require.Equal(t, 200.0, state.PaidAmount)
	require.Equal(t, 300.0, state.Outstanding)
}

func TestUpdatePaymentStatusRejectsUnknown(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo)

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID:    1,
		PaymentMethod: PaymentCredit,
		Lines:         []OrderLineInput{{ItemID: 7, Qty: 1, ItemPrice: 10}},
	})
	require.NoError(t, err)

	err = svc.UpdatePaymentStatus(context.Background(), created.ID, PaymentStatus("settled"))
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.UpdatePaymentStatus(context.Background(), created.ID, PaymentStatusPartiallyPaid))
}

func TestUpdateOrderCashAppliesWholeOrderDiscount(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo)

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID:    1,
		PaymentMethod: PaymentCredit,
		Lines:         []OrderLineInput{{ItemID: 7, Qty: 1, ItemPrice: 100}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateOrder(context.Background(), created.ID, UpdateOrderInput{
		CustomerID:    1,
		PaymentMethod: PaymentCash,
		OrderDate:     time.Now(),
		Lines:         []OrderLineInput{{ItemID: 7, Qty: 2, ItemPrice: 100}},
	})
	require.NoError(t, err)
	require.Equal(t, 200.0, updated.TotalAmount)
	require.Equal(t, 20.0, updated.Discount)
}

func TestUpdateOrderRestoresOldStock(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo)
	repo.stock[7] = 10

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID:    1,
		PaymentMethod: PaymentCredit,
		Lines:         []OrderLineInput{{ItemID: 7, Qty: 4, ItemPrice: 10}},
	})
	require.NoError(t, err)
	require.Equal(t, 6.0, repo.stock[7])

	_, err = svc.UpdateOrder(context.Background(), created.ID, UpdateOrderInput{
		CustomerID:    1,
		PaymentMethod: PaymentCredit,
		Lines:         []OrderLineInput{{ItemID: 7, Qty: 1, ItemPrice: 10}},
	})
	require.NoError(t, err)
	require.Equal(t, 9.0, repo.stock[7])
}

func TestDeleteOrderDoesNotRestock(t *testing.T) {
	repo := newMemoryOrderRepo()
	svc := newTestService(repo)
	repo.stock[7] = 10

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID:    1,
		PaymentMethod: PaymentCash,
		Lines:         []OrderLineInput{{ItemID: 7, Qty: 4, ItemPrice: 10}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(context.Background(), created.ID))
	require.Equal(t, 6.0, repo.stock[7])

	_, _, err = svc.GetOrder(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
