package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-dms/meridian-dms/internal/distribution"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReorderScan flags items at or below the reorder level.
	TaskReorderScan = "stock:reorder_scan"
	// TaskStockSnapshot rebuilds the cached stock report.
	TaskStockSnapshot = "report:stock_snapshot"
)

// NewReorderScanTask constructs the reorder scan task.
func NewReorderScanTask() *asynq.Task {
	return asynq.NewTask(TaskReorderScan, nil)
}

// NewStockSnapshotTask constructs the snapshot task.
func NewStockSnapshotTask() *asynq.Task {
	return asynq.NewTask(TaskStockSnapshot, nil)
}

// StockLister provides the stock rows for the reorder scan.
type StockLister interface {
	List(ctx context.Context) ([]distribution.Detail, error)
}

// ReportWarmer refreshes the cached stock report.
type ReportWarmer interface {
	WarmStockReport(ctx context.Context) error
}

// NewReorderScanHandler returns the handler for TaskReorderScan. Items at or
// below the threshold are logged as reorder candidates.
func NewReorderScanHandler(stock StockLister, threshold float64, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		rows, err := stock.List(ctx)
		if err != nil {
			return err
		}
		low := 0
		for _, row := range rows {
			if row.InStock > threshold {
				continue
			}
			low++
			logger.Warn("reorder candidate",
				"item_id", row.ItemID,
				"item_code", row.ItemCode,
				"in_stock", row.InStock,
				"threshold", threshold)
		}
		logger.Info("reorder scan finished", "scanned", len(rows), "low", low)
		return nil
	}
}

// NewStockSnapshotHandler returns the handler for TaskStockSnapshot.
func NewStockSnapshotHandler(warmer ReportWarmer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := warmer.WarmStockReport(ctx); err != nil {
			return err
		}
		logger.Info("stock report snapshot refreshed")
		return nil
	}
}
