package reports

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides the report queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// stockReportQuery builds the report SQL. Date filters apply to the item's
// creation date, never to the LEFT-JOINed distributions columns, so items
// without a stock row stay in the result set.
func stockReportQuery(filter Filter) (string, []interface{}) {
	query := `SELECT i.id, i.code, i.name, i.unit_type, i.unit_price, i.second_price, i.wholesale_price,
i.supplier_id, COALESCE(s.name,''), d.in_stock_amount, d.updated_at
FROM items i
LEFT JOIN suppliers s ON i.supplier_id = s.id
LEFT JOIN distributions d ON d.item_id = i.id
WHERE i.deleted=FALSE`
	args := []interface{}{}
	argCount := 0
	if filter.SupplierID != 0 {
		argCount++
		query += ` AND i.supplier_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.SupplierID)
	}
	if !filter.FromDate.IsZero() {
		argCount++
		query += ` AND i.created_at >= $` + strconv.Itoa(argCount)
		args = append(args, filter.FromDate)
	}
	if !filter.ToDate.IsZero() {
		argCount++
		query += ` AND i.created_at <= $` + strconv.Itoa(argCount)
		args = append(args, filter.ToDate)
	}
	query += ` ORDER BY i.name`
	return query, args
}

// StockReport joins items with supplier and stock. Items without a stock row
// are included with a null quantity.
func (r *Repository) StockReport(ctx context.Context, filter Filter) ([]StockReportRow, error) {
	query, args := stockReportQuery(filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var report []StockReportRow
	for rows.Next() {
		var row StockReportRow
		if err := rows.Scan(&row.ItemID, &row.ItemCode, &row.ItemName, &row.UnitType, &row.UnitPrice,
			&row.SecondPrice, &row.WholesalePrice, &row.SupplierID, &row.SupplierName, &row.InStock, &row.StockUpdatedAt); err != nil {
			return nil, err
		}
		report = append(report, row)
	}
	return report, rows.Err()
}
