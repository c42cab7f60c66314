package distribution

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryStockRepo struct {
	rows    map[int64]Detail
	updates []StockUpdate
	nextID  int64
}

func newMemoryStockRepo() *memoryStockRepo {
	return &memoryStockRepo{rows: make(map[int64]Detail)}
}

func (r *memoryStockRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, r)
}

func (r *memoryStockRepo) GetByItem(ctx context.Context, itemID int64) (Detail, error) {
	for _, d := range r.rows {
		if d.ItemID == itemID {
			return d, nil
		}
	}
	return Detail{}, ErrNotFound
}

func (r *memoryStockRepo) Get(ctx context.Context, id int64) (Detail, error) {
	d, ok := r.rows[id]
	if !ok {
		return Detail{}, ErrNotFound
	}
	return d, nil
}

func (r *memoryStockRepo) List(ctx context.Context) ([]Detail, error) {
	var out []Detail
	for _, d := range r.rows {
		out = append(out, d)
	}
	return out, nil
}

func (r *memoryStockRepo) ListStockUpdates(ctx context.Context, filter StockUpdateFilter) ([]StockUpdate, error) {
	var out []StockUpdate
	for _, u := range r.updates {
		if filter.ItemID != 0 && u.ItemID != filter.ItemID {
			continue
		}
		if filter.Type != "" && u.Type != filter.Type {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *memoryStockRepo) UpsertStock(ctx context.Context, itemID int64, qtyChange float64) (float64, error) {
	for id, d := range r.rows {
		if d.ItemID == itemID {
			d.InStock += qtyChange
			r.rows[id] = d
			return d.InStock, nil
		}
	}
	r.nextID++
	d := Detail{Distribution: Distribution{ID: r.nextID, ItemID: itemID, InStock: qtyChange}}
	r.rows[r.nextID] = d
	return d.InStock, nil
}

func (r *memoryStockRepo) SetStock(ctx context.Context, id int64, amount float64) (int64, error) {
	d, ok := r.rows[id]
	if !ok {
		return 0, ErrNotFound
	}
	d.InStock = amount
	r.rows[id] = d
	return d.ItemID, nil
}

func (r *memoryStockRepo) InsertStockUpdate(ctx context.Context, update StockUpdate) error {
	if update.At.IsZero() {
		update.At = time.Now()
	}
	update.ID = int64(len(r.updates) + 1)
	r.updates = append(r.updates, update)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSetStockOverwritesAmount(t *testing.T) {
	repo := newMemoryStockRepo()
	svc := NewService(repo, testLogger())

	_, err := repo.UpsertStock(context.Background(), 7, 50)
	require.NoError(t, err)

	updated, err := svc.SetStock(context.Background(), 1, 32)
	require.NoError(t, err)
	require.Equal(t, 32.0, updated.InStock)
}

func TestSetStockRecordsManualMovement(t *testing.T) {
	repo := newMemoryStockRepo()
	svc := NewService(repo, testLogger())

	_, err := repo.UpsertStock(context.Background(), 7, 50)
	require.NoError(t, err)

	_, err = svc.SetStock(context.Background(), 1, 30)
	require.NoError(t, err)

	updates, err := svc.ListStockUpdates(context.Background(), StockUpdateFilter{ItemID: 7, Type: UpdateTypeManual})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, -20.0, updates[0].QtyChange)
}

func TestSetStockAllowsNegativeAmount(t *testing.T) {
	repo := newMemoryStockRepo()
	svc := NewService(repo, testLogger())

	_, err := repo.UpsertStock(context.Background(), 7, 10)
	require.NoError(t, err)

	updated, err := svc.SetStock(context.Background(), 1, -4)
	require.NoError(t, err)
	require.Equal(t, -4.0, updated.InStock)

	updates, err := svc.ListStockUpdates(context.Background(), StockUpdateFilter{ItemID: 7, Type: UpdateTypeManual})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, -14.0, updates[0].QtyChange)
}

func TestSetStockUnknownRow(t *testing.T) {
	svc := NewService(newMemoryStockRepo(), testLogger())

	_, err := svc.SetStock(context.Background(), 99, 10)
	require.ErrorIs(t, err, ErrNotFound)
}
