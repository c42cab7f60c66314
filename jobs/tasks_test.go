package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-dms/meridian-dms/internal/distribution"
)

type fakeStockLister struct {
	rows []distribution.Detail
}

func (f *fakeStockLister) List(ctx context.Context) ([]distribution.Detail, error) {
	return f.rows, nil
}

type fakeWarmer struct {
	calls int
}

func (f *fakeWarmer) WarmStockReport(ctx context.Context) error {
	f.calls++
	return nil
}

func TestReorderScanHandler(t *testing.T) {
	lister := &fakeStockLister{rows: []distribution.Detail{
		{Distribution: distribution.Distribution{ItemID: 1, InStock: 3}},
		{Distribution: distribution.Distribution{ItemID: 2, InStock: 50}},
	}}
	handler := NewReorderScanHandler(lister, 10, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, handler(context.Background(), NewReorderScanTask()))
}

func TestStockSnapshotHandler(t *testing.T) {
	warmer := &fakeWarmer{}
	handler := NewStockSnapshotHandler(warmer, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, handler(context.Background(), NewStockSnapshotTask()))
	require.Equal(t, 1, warmer.calls)
}
