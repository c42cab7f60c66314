package returns

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-dms/meridian-dms/internal/distribution"
	"github.com/meridian-dms/meridian-dms/internal/sales"
)

type memoryReturnsRepo struct {
	suppliers     map[int64]bool
	orders        map[int64]sales.Order
	orderLines    map[int64][]sales.OrderLine
	custReturns   map[int64]CustomerReturn
	custLines     map[int64][]CustomerReturnLine
	suppReturns   map[int64]SupplierReturn
	suppLines     map[int64][]SupplierReturnLine
	stock         map[int64]float64
	updates       []distribution.StockUpdate
	nextCustretID int64
	nextSuppRetID int64
}

func newMemoryReturnsRepo() *memoryReturnsRepo {
	return &memoryReturnsRepo{
		suppliers:   map[int64]bool{1: true},
		orders:      make(map[int64]sales.Order),
		orderLines:  make(map[int64][]sales.OrderLine),
		custReturns: make(map[int64]CustomerReturn),
		custLines:   make(map[int64][]CustomerReturnLine),
		suppReturns: make(map[int64]SupplierReturn),
		suppLines:   make(map[int64][]SupplierReturnLine),
		stock:       make(map[int64]float64),
	}
}

func (r *memoryReturnsRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryReturnsRepo) GetOrderForReturn(ctx context.Context, orderID int64) (sales.Order, []sales.OrderLine, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return sales.Order{}, nil, ErrNotFound
	}
	return order, r.orderLines[orderID], nil
}

func (r *memoryReturnsRepo) SupplierExists(ctx context.Context, id int64) (bool, error) {
	return r.suppliers[id], nil
}

func (r *memoryReturnsRepo) ListCustomerReturns(ctx context.Context) ([]CustomerReturn, map[int64][]CustomerReturnLine, error) {
	var out []CustomerReturn
	for _, ret := range r.custReturns {
		out = append(out, ret)
	}
	return out, r.custLines, nil
}

func (r *memoryReturnsRepo) ListSupplierReturns(ctx context.Context) ([]SupplierReturn, map[int64][]SupplierReturnLine, error) {
	var out []SupplierReturn
	for _, ret := range r.suppReturns {
		out = append(out, ret)
	}
	return out, r.suppLines, nil
}

func (r *memoryReturnsRepo) GetNonSalableItems(ctx context.Context) ([]NonSalableItem, error) {
	totals := make(map[int64]float64)
	for _, lines := range r.custLines {
		for _, line := range lines {
			if !line.IsSalable {
				totals[line.ItemID] += line.Qty
			}
		}
	}
	var out []NonSalableItem
	for itemID, qty := range totals {
		out = append(out, NonSalableItem{ItemID: itemID, Qty: qty})
	}
	return out, nil
}

func (r *memoryReturnsRepo) CreateCustomerReturn(ctx context.Context, ret CustomerReturn) (int64, error) {
	r.nextCustretID++
	ret.ID = r.nextCustretID
	r.custReturns[ret.ID] = ret
	return ret.ID, nil
}

func (r *memoryReturnsRepo) InsertCustomerReturnLine(ctx context.Context, line CustomerReturnLine) error {
	r.custLines[line.ReturnID] = append(r.custLines[line.ReturnID], line)
	return nil
}

func (r *memoryReturnsRepo) ReduceOrderLineQty(ctx context.Context, orderID, itemID int64, qty float64) error {
	lines := r.orderLines[orderID]
	for i, line := range lines {
		if line.ItemID == itemID {
			lines[i].Qty -= qty
		}
	}
	return nil
}

func (r *memoryReturnsRepo) ReduceOrderTotal(ctx context.Context, orderID int64, amount float64) error {
	order := r.orders[orderID]
	order.TotalAmount -= amount
	r.orders[orderID] = order
	return nil
}

func (r *memoryReturnsRepo) CreateSupplierReturn(ctx context.Context, ret SupplierReturn) (int64, error) {
	r.nextSuppRetID++
	ret.ID = r.nextSuppRetID
	r.suppReturns[ret.ID] = ret
	return ret.ID, nil
}

func (r *memoryReturnsRepo) InsertSupplierReturnLine(ctx context.Context, line SupplierReturnLine) error {
	r.suppLines[line.ReturnID] = append(r.suppLines[line.ReturnID], line)
	return nil
}

func (r *memoryReturnsRepo) SetCustomerReturnStatus(ctx context.Context, id int64, status Status) error {
	ret, ok := r.custReturns[id]
	if !ok {
		return ErrNotFound
	}
	ret.Status = status
	r.custReturns[id] = ret
	return nil
}

func (r *memoryReturnsRepo) SetSupplierReturnStatus(ctx context.Context, id int64, status Status) error {
	ret, ok := r.suppReturns[id]
	if !ok {
		return ErrNotFound
	}
	ret.Status = status
	r.suppReturns[id] = ret
	return nil
}

func (r *memoryReturnsRepo) UpsertStock(ctx context.Context, itemID int64, qtyChange float64) (float64, error) {
	r.stock[itemID] += qtyChange
	return r.stock[itemID], nil
}

func (r *memoryReturnsRepo) InsertStockUpdate(ctx context.Context, update distribution.StockUpdate) error {
	r.updates = append(r.updates, update)
	return nil
}

func newTestService(repo *memoryReturnsRepo) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateCustomerReturnUnknownOrder(t *testing.T) {
	svc := newTestService(newMemoryReturnsRepo())

	_, err := svc.CreateCustomerReturn(context.Background(), 99, []CustomerReturnLineInput{{ItemID: 7, Qty: 1}})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateCustomerReturnPricesFromOrderLines(t *testing.T) {
	repo := newMemoryReturnsRepo()
	repo.orders[1] = sales.Order{ID: 1, Code: "ORD-1", TotalAmount: 450}
	repo.orderLines[1] = []sales.OrderLine{{OrderID: 1, ItemID: 7, Qty: 5, ItemPrice: 100, Discount1: 10}}
	svc := newTestService(repo)

	ret, err := svc.CreateCustomerReturn(context.Background(), 1, []CustomerReturnLineInput{
		{ItemID: 7, Qty: 2, IsSalable: true},
	})
	require.NoError(t, err)
	require.Equal(t, 180.0, ret.TotalAmount)
	require.Equal(t, 270.0, repo.orders[1].TotalAmount)
}

func TestCreateCustomerReturnSalableRestocks(t *testing.T) {
	repo := newMemoryReturnsRepo()
	repo.orders[1] = sales.Order{ID: 1, Code: "ORD-1", TotalAmount: 100}
	repo.orderLines[1] = []sales.OrderLine{{OrderID: 1, ItemID: 7, Qty: 5, ItemPrice: 20}}
	repo.stock[7] = 15
	svc := newTestService(repo)

	_, err := svc.CreateCustomerReturn(context.Background(), 1, []CustomerReturnLineInput{
		{ItemID: 7, Qty: 2, IsSalable: true},
	})
	require.NoError(t, err)
	require.Equal(t, 17.0, repo.stock[7])
	require.Equal(t, 3.0, repo.orderLines[1][0].Qty)
	require.Len(t, repo.updates, 1)
	require.Equal(t, distribution.UpdateTypeCustomerReturn, repo.updates[0].Type)
}

func TestCreateCustomerReturnNonSalableSkipsStock(t *testing.T) {
	repo := newMemoryReturnsRepo()
	repo.orders[1] = sales.Order{ID: 1, Code: "ORD-1", TotalAmount: 100}
	repo.orderLines[1] = []sales.OrderLine{{OrderID: 1, ItemID: 7, Qty: 5, ItemPrice: 20}}
	repo.stock[7] = 15
	svc := newTestService(repo)

	_, err := svc.CreateCustomerReturn(context.Background(), 1, []CustomerReturnLineInput{
		{ItemID: 7, Qty: 2, IsSalable: false, Reason: "damaged"},
	})
	require.NoError(t, err)
	require.Equal(t, 15.0, repo.stock[7])
	require.Empty(t, repo.updates)
	require.Equal(t, 3.0, repo.orderLines[1][0].Qty)
}

func TestCreateCustomerReturnRejectsForeignItem(t *testing.T) {
	repo := newMemoryReturnsRepo()
	repo.orders[1] = sales.Order{ID: 1, Code: "ORD-1"}
	repo.orderLines[1] = []sales.OrderLine{{OrderID: 1, ItemID: 7, Qty: 5, ItemPrice: 20}}
	svc := newTestService(repo)

	_, err := svc.CreateCustomerReturn(context.Background(), 1, []CustomerReturnLineInput{{ItemID: 99, Qty: 1}})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateSupplierReturnDebitsStock(t *testing.T) {
	repo := newMemoryReturnsRepo()
	repo.stock[7] = 10
	svc := newTestService(repo)

	_, err := svc.CreateSupplierReturn(context.Background(), 1, []SupplierReturnLineInput{
		{ItemID: 7, Qty: 4, Reason: "expired"},
	})
	require.NoError(t, err)
	require.Equal(t, 6.0, repo.stock[7])
	require.Len(t, repo.updates, 1)
	require.Equal(t, distribution.UpdateTypeSupplierReturn, repo.updates[0].Type)
	require.Equal(t, -4.0, repo.updates[0].QtyChange)
}

func TestCreateSupplierReturnUnknownSupplier(t *testing.T) {
	svc := newTestService(newMemoryReturnsRepo())

	_, err := svc.CreateSupplierReturn(context.Background(), 42, []SupplierReturnLineInput{{ItemID: 7, Qty: 1}})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReturnStatus(t *testing.T) {
	repo := newMemoryReturnsRepo()
	repo.orders[1] = sales.Order{ID: 1, Code: "ORD-1"}
	repo.orderLines[1] = []sales.OrderLine{{OrderID: 1, ItemID: 7, Qty: 5, ItemPrice: 20}}
	svc := newTestService(repo)

	ret, err := svc.CreateCustomerReturn(context.Background(), 1, []CustomerReturnLineInput{{ItemID: 7, Qty: 1}})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateCustomerReturnStatus(context.Background(), ret.ID, StatusProcessed))
	require.Equal(t, StatusProcessed, repo.custReturns[ret.ID].Status)

	err = svc.UpdateCustomerReturnStatus(context.Background(), ret.ID, Status("void"))
	require.ErrorIs(t, err, ErrValidation)
}
