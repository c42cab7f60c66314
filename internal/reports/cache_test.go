package reports

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	_ "github.com/meridian-dms/meridian-dms/testing"
)

type countingRepo struct {
	calls int
	rows  []StockReportRow
}

func (r *countingRepo) StockReport(ctx context.Context, filter Filter) ([]StockReportRow, error) {
	r.calls++
	return r.rows, nil
}

func testRows() []StockReportRow {
	qty := 17.0
	return []StockReportRow{
		{ItemID: 1, ItemCode: "I1", ItemName: "Sugar 1kg", UnitPrice: 100, WholesalePrice: 85.5, SupplierName: "Acme", InStock: &qty},
		{ItemID: 2, ItemCode: "I2", ItemName: "Rice 5kg", UnitPrice: 40, WholesalePrice: 38},
	}
}

func newCachedService(t *testing.T, repo *countingRepo, ttl time.Duration) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, client, ttl, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestStockReportServedFromCache(t *testing.T) {
	repo := &countingRepo{rows: testRows()}
	svc, _ := newCachedService(t, repo, time.Minute)

	first, err := svc.StockReport(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, 1, repo.calls)

	second, err := svc.StockReport(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.calls)
}

func TestStockReportCacheExpires(t *testing.T) {
	repo := &countingRepo{rows: testRows()}
	svc, mr := newCachedService(t, repo, time.Minute)

	_, err := svc.StockReport(context.Background(), Filter{})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = svc.StockReport(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestStockReportFilterKeysAreDistinct(t *testing.T) {
	repo := &countingRepo{rows: testRows()}
	svc, _ := newCachedService(t, repo, time.Minute)

	_, err := svc.StockReport(context.Background(), Filter{})
	require.NoError(t, err)
	_, err = svc.StockReport(context.Background(), Filter{SupplierID: 3})
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestStockReportWithoutRedis(t *testing.T) {
	repo := &countingRepo{rows: testRows()}
	svc := NewService(repo, nil, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rows, err := svc.StockReport(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	_, err = svc.StockReport(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestWarmStockReportReplacesCacheEntry(t *testing.T) {
	repo := &countingRepo{rows: testRows()}
	svc, _ := newCachedService(t, repo, time.Minute)

	_, err := svc.StockReport(context.Background(), Filter{})
	require.NoError(t, err)

	repo.rows = testRows()[:1]
	require.NoError(t, svc.WarmStockReport(context.Background()))

	rows, err := svc.StockReport(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
