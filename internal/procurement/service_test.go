package procurement

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-dms/meridian-dms/internal/distribution"
)

type memoryProcurementRepo struct {
	suppliers map[int64]bool
	pos       map[int64]PurchaseOrder
	poLines   map[int64][]POLine
	grns      map[int64]GoodsReceivedNote
	grnLines  map[int64][]GRNLine
	stock     map[int64]float64
	updates   []distribution.StockUpdate
	nextPOID  int64
	nextGRNID int64
}

func newMemoryProcurementRepo() *memoryProcurementRepo {
	return &memoryProcurementRepo{
		suppliers: map[int64]bool{1: true},
		pos:       make(map[int64]PurchaseOrder),
		poLines:   make(map[int64][]POLine),
		grns:      make(map[int64]GoodsReceivedNote),
		grnLines:  make(map[int64][]GRNLine),
		stock:     make(map[int64]float64),
	}
}

func (r *memoryProcurementRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryProcurementRepo) SupplierExists(ctx context.Context, id int64) (bool, error) {
	return r.suppliers[id], nil
}

func (r *memoryProcurementRepo) GetPO(ctx context.Context, id int64) (PurchaseOrder, []POLine, error) {
	po, ok := r.pos[id]
	if !ok || po.Status == POStatusDeleted {
		return PurchaseOrder{}, nil, ErrNotFound
	}
	return po, r.poLines[id], nil
}

func (r *memoryProcurementRepo) ListPOs(ctx context.Context, filters ListFilters) ([]PurchaseOrder, error) {
	var out []PurchaseOrder
	for _, po := range r.pos {
		if po.Status == POStatusDeleted {
			continue
		}
		out = append(out, po)
	}
	return out, nil
}

func (r *memoryProcurementRepo) GetGRN(ctx context.Context, id int64) (GoodsReceivedNote, []GRNLine, error) {
	grn, ok := r.grns[id]
	if !ok || grn.Status == GRNStatusDeleted {
		return GoodsReceivedNote{}, nil, ErrNotFound
	}
	return grn, r.grnLines[id], nil
}

func (r *memoryProcurementRepo) ListGRNs(ctx context.Context, filters ListFilters) ([]GoodsReceivedNote, error) {
	var out []GoodsReceivedNote
	for _, grn := range r.grns {
		if grn.Status == GRNStatusDeleted {
			continue
		}
		out = append(out, grn)
	}
	return out, nil
}

func (r *memoryProcurementRepo) CreatePO(ctx context.Context, po PurchaseOrder) (int64, error) {
	r.nextPOID++
	po.ID = r.nextPOID
	r.pos[po.ID] = po
	return po.ID, nil
}

func (r *memoryProcurementRepo) InsertPOLine(ctx context.Context, line POLine) error {
	r.poLines[line.POID] = append(r.poLines[line.POID], line)
	return nil
}

func (r *memoryProcurementRepo) UpdatePO(ctx context.Context, id int64, orderDate time.Time, supplierID int64) error {
	po, ok := r.pos[id]
	if !ok || po.Status == POStatusDeleted {
		return ErrNotFound
	}
	po.OrderDate = orderDate
	po.SupplierID = supplierID
	r.pos[id] = po
	return nil
}

func (r *memoryProcurementRepo) UpdatePOStatus(ctx context.Context, id int64, status POStatus) error {
	po, ok := r.pos[id]
	if !ok {
		return ErrNotFound
	}
	po.Status = status
	r.pos[id] = po
	return nil
}

func (r *memoryProcurementRepo) CreateGRN(ctx context.Context, grn GoodsReceivedNote) (int64, error) {
	for _, existing := range r.grns {
		if existing.POID == grn.POID {
			return 0, ErrDuplicate
		}
	}
	r.nextGRNID++
	grn.ID = r.nextGRNID
	r.grns[grn.ID] = grn
	return grn.ID, nil
}

func (r *memoryProcurementRepo) InsertGRNLine(ctx context.Context, line GRNLine) error {
	r.grnLines[line.GRNID] = append(r.grnLines[line.GRNID], line)
	return nil
}

func (r *memoryProcurementRepo) UpdateGRNStatus(ctx context.Context, id int64, status GRNStatus) error {
	grn, ok := r.grns[id]
	if !ok {
		return ErrNotFound
	}
	grn.Status = status
	r.grns[id] = grn
	return nil
}

func (r *memoryProcurementRepo) UpsertStock(ctx context.Context, itemID int64, qtyChange float64) (float64, error) {
	r.stock[itemID] += qtyChange
	return r.stock[itemID], nil
}

func (r *memoryProcurementRepo) InsertStockUpdate(ctx context.Context, update distribution.StockUpdate) error {
	r.updates = append(r.updates, update)
	return nil
}

func newTestService(repo *memoryProcurementRepo) *Service {
	return NewService(repo, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func createTestPO(t *testing.T, svc *Service, qty float64) PurchaseOrder {
	t.Helper()
	po, err := svc.CreatePurchaseOrder(context.Background(), CreatePOInput{
		SupplierID: 1,
		Lines:      []POLineInput{{ItemID: 7, Qty: qty}},
	})
	require.NoError(t, err)
	return po
}

func TestCreatePurchaseOrderRequiresLines(t *testing.T) {
	svc := newTestService(newMemoryProcurementRepo())

	_, err := svc.CreatePurchaseOrder(context.Background(), CreatePOInput{SupplierID: 1})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreatePurchaseOrderUnknownSupplier(t *testing.T) {
	svc := newTestService(newMemoryProcurementRepo())

	_, err := svc.CreatePurchaseOrder(context.Background(), CreatePOInput{
		SupplierID: 42,
		Lines:      []POLineInput{{ItemID: 7, Qty: 5}},
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateGRNMatchCompletesPO(t *testing.T) {
	repo := newMemoryProcurementRepo()
	svc := newTestService(repo)
	po := createTestPO(t, svc, 20)

	result, err := svc.CreateGRN(context.Background(), CreateGRNInput{
		POID:  po.ID,
		Lines: []GRNLineInput{{ItemID: 7, OrderedQty: 20, ReceivedQty: 20}},
	})
	require.NoError(t, err)
	require.Zero(t, result.NewPOID)
	require.Equal(t, POStatusCompleted, repo.pos[po.ID].Status)
}

func TestCreateGRNMismatchSpawnsFollowUpPO(t *testing.T) {
	repo := newMemoryProcurementRepo()
	svc := newTestService(repo)
	po := createTestPO(t, svc, 20)

	result, err := svc.CreateGRN(context.Background(), CreateGRNInput{
		POID:  po.ID,
		Lines: []GRNLineInput{{ItemID: 7, OrderedQty: 20, ReceivedQty: 15}},
	})
	require.NoError(t, err)
	require.NotZero(t, result.NewPOID)
	require.Equal(t, POStatusIgnored, repo.pos[po.ID].Status)

	newPO := repo.pos[result.NewPOID]
	require.Equal(t, POStatusPending, newPO.Status)
	require.Equal(t, po.SupplierID, newPO.SupplierID)
	lines := repo.poLines[result.NewPOID]
	require.Len(t, lines, 1)
	require.Equal(t, 15.0, lines[0].Qty)
}

func TestCreateGRNNothingReceivedSkipsFollowUpPO(t *testing.T) {
	repo := newMemoryProcurementRepo()
	svc := newTestService(repo)
	po := createTestPO(t, svc, 20)

	result, err := svc.CreateGRN(context.Background(), CreateGRNInput{
		POID:  po.ID,
		Lines: []GRNLineInput{{ItemID: 7, OrderedQty: 20, ReceivedQty: 0}},
	})
	require.NoError(t, err)
	require.Equal(t, POStatusIgnored, repo.pos[po.ID].Status)
	require.Zero(t, result.NewPOID)
	require.Len(t, repo.pos, 1)
}

func TestCreateGRNDuplicateForSamePO(t *testing.T) {
	repo := newMemoryProcurementRepo()
	svc := newTestService(repo)
	po := createTestPO(t, svc, 20)

	_, err := svc.CreateGRN(context.Background(), CreateGRNInput{
		POID:  po.ID,
		Lines: []GRNLineInput{{ItemID: 7, OrderedQty: 20, ReceivedQty: 20}},
	})
	require.NoError(t, err)

	_, err = svc.CreateGRN(context.Background(), CreateGRNInput{
		POID:  po.ID,
		Lines: []GRNLineInput{{ItemID: 7, OrderedQty: 20, ReceivedQty: 20}},
	})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestAcceptGRNPostsStockOnce(t *testing.T) {
	repo := newMemoryProcurementRepo()
	svc := newTestService(repo)
	po := createTestPO(t, svc, 20)

	result, err := svc.CreateGRN(context.Background(), CreateGRNInput{
		POID:  po.ID,
		Lines: []GRNLineInput{{ItemID: 7, OrderedQty: 20, ReceivedQty: 20}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.AcceptGRN(context.Background(), result.GRNID))
	require.Equal(t, 20.0, repo.stock[7])
	require.Len(t, repo.updates, 1)
	require.Equal(t, distribution.UpdateTypeGRN, repo.updates[0].Type)

	err = svc.AcceptGRN(context.Background(), result.GRNID)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Equal(t, 20.0, repo.stock[7])
}

func TestUpdateGRNStatusRejectsUnknown(t *testing.T) {
	repo := newMemoryProcurementRepo()
	svc := newTestService(repo)
	po := createTestPO(t, svc, 5)

	result, err := svc.CreateGRN(context.Background(), CreateGRNInput{
		POID:  po.ID,
		Lines: []GRNLineInput{{ItemID: 7, OrderedQty: 5, ReceivedQty: 5}},
	})
	require.NoError(t, err)

	err = svc.UpdateGRNStatus(context.Background(), result.GRNID, GRNStatus("SHIPPED"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeletePurchaseOrderSoft(t *testing.T) {
	repo := newMemoryProcurementRepo()
	svc := newTestService(repo)
	po := createTestPO(t, svc, 5)

	require.NoError(t, svc.DeletePurchaseOrder(context.Background(), po.ID))
	_, _, err := svc.GetPurchaseOrder(context.Background(), po.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
