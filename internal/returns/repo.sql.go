package returns

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-dms/meridian-dms/internal/distribution"
	"github.com/meridian-dms/meridian-dms/internal/sales"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	CreateCustomerReturn(ctx context.Context, ret CustomerReturn) (int64, error)
	InsertCustomerReturnLine(ctx context.Context, line CustomerReturnLine) error
	ReduceOrderLineQty(ctx context.Context, orderID, itemID int64, qty float64) error
	ReduceOrderTotal(ctx context.Context, orderID int64, amount float64) error
	CreateSupplierReturn(ctx context.Context, ret SupplierReturn) (int64, error)
	InsertSupplierReturnLine(ctx context.Context, line SupplierReturnLine) error
	SetCustomerReturnStatus(ctx context.Context, id int64, status Status) error
	SetSupplierReturnStatus(ctx context.Context, id int64, status Status) error
	UpsertStock(ctx context.Context, itemID int64, qtyChange float64) (float64, error)
	InsertStockUpdate(ctx context.Context, update distribution.StockUpdate) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepo{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// GetOrderForReturn loads the order header and lines being returned against.
func (r *Repository) GetOrderForReturn(ctx context.Context, orderID int64) (sales.Order, []sales.OrderLine, error) {
	var o sales.Order
	err := r.pool.QueryRow(ctx, `SELECT id, code, customer_id, total_amount, discount, paid_amount FROM orders WHERE id=$1 AND deleted=FALSE`, orderID).
		Scan(&o.ID, &o.Code, &o.CustomerID, &o.TotalAmount, &o.Discount, &o.PaidAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sales.Order{}, nil, ErrNotFound
		}
		return sales.Order{}, nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, item_id, qty, discount1, discount2, item_price FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return sales.Order{}, nil, err
	}
	defer rows.Close()
	var lines []sales.OrderLine
	for rows.Next() {
		var line sales.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ItemID, &line.Qty, &line.Discount1, &line.Discount2, &line.ItemPrice); err != nil {
			return sales.Order{}, nil, err
		}
		lines = append(lines, line)
	}
	return o, lines, rows.Err()
}

// SupplierExists reports whether a live supplier row exists.
func (r *Repository) SupplierExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE id=$1 AND deleted=FALSE)`, id).Scan(&exists)
	return exists, err
}

// ListCustomerReturns returns customer return headers with lines, newest first.
func (r *Repository) ListCustomerReturns(ctx context.Context) ([]CustomerReturn, map[int64][]CustomerReturnLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT cr.id, cr.order_id, COALESCE(o.code,''), cr.status, cr.total_amount, cr.created_at
FROM customer_returns cr
LEFT JOIN orders o ON cr.order_id = o.id
ORDER BY cr.created_at DESC, cr.id DESC`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var rets []CustomerReturn
	for rows.Next() {
		var ret CustomerReturn
		if err := rows.Scan(&ret.ID, &ret.OrderID, &ret.OrderCode, &ret.Status, &ret.TotalAmount, &ret.CreatedAt); err != nil {
			return nil, nil, err
		}
		rets = append(rets, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	lineRows, err := r.pool.Query(ctx, `SELECT l.id, l.return_id, l.item_id, COALESCE(i.name,''), l.qty, l.is_salable, l.reason
FROM customer_return_items l
LEFT JOIN items i ON l.item_id = i.id
ORDER BY l.id`)
	if err != nil {
		return nil, nil, err
	}
	defer lineRows.Close()
	lines := make(map[int64][]CustomerReturnLine)
	for lineRows.Next() {
		var line CustomerReturnLine
		if err := lineRows.Scan(&line.ID, &line.ReturnID, &line.ItemID, &line.ItemName, &line.Qty, &line.IsSalable, &line.Reason); err != nil {
			return nil, nil, err
		}
		lines[line.ReturnID] = append(lines[line.ReturnID], line)
	}
	return rets, lines, lineRows.Err()
}

// ListSupplierReturns returns supplier return headers with lines, newest first.
func (r *Repository) ListSupplierReturns(ctx context.Context) ([]SupplierReturn, map[int64][]SupplierReturnLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT sr.id, sr.supplier_id, COALESCE(s.name,''), sr.status, sr.created_at
FROM supplier_returns sr
LEFT JOIN suppliers s ON sr.supplier_id = s.id
ORDER BY sr.created_at DESC, sr.id DESC`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var rets []SupplierReturn
	for rows.Next() {
		var ret SupplierReturn
		if err := rows.Scan(&ret.ID, &ret.SupplierID, &ret.SupplierName, &ret.Status, &ret.CreatedAt); err != nil {
			return nil, nil, err
		}
		rets = append(rets, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	lineRows, err := r.pool.Query(ctx, `SELECT l.id, l.return_id, l.item_id, COALESCE(i.name,''), l.qty, l.reason
FROM supplier_return_items l
LEFT JOIN items i ON l.item_id = i.id
ORDER BY l.id`)
	if err != nil {
		return nil, nil, err
	}
	defer lineRows.Close()
	lines := make(map[int64][]SupplierReturnLine)
	for lineRows.Next() {
		var line SupplierReturnLine
		if err := lineRows.Scan(&line.ID, &line.ReturnID, &line.ItemID, &line.ItemName, &line.Qty, &line.Reason); err != nil {
			return nil, nil, err
		}
		lines[line.ReturnID] = append(lines[line.ReturnID], line)
	}
	return rets, lines, lineRows.Err()
}

// GetNonSalableItems aggregates unsellable returned quantity per item.
func (r *Repository) GetNonSalableItems(ctx context.Context) ([]NonSalableItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT i.id, i.code, i.name, SUM(l.qty)
FROM customer_return_items l
JOIN items i ON l.item_id = i.id
WHERE l.is_salable = FALSE
GROUP BY i.id, i.code, i.name
ORDER BY i.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NonSalableItem
	for rows.Next() {
		var item NonSalableItem
		if err := rows.Scan(&item.ItemID, &item.ItemCode, &item.ItemName, &item.Qty); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (tx *txRepo) CreateCustomerReturn(ctx context.Context, ret CustomerReturn) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO customer_returns (order_id, status, total_amount, created_at)
VALUES ($1,$2,$3,NOW()) RETURNING id`, ret.OrderID, ret.Status, ret.TotalAmount).Scan(&id)
	return id, err
}

func (tx *txRepo) InsertCustomerReturnLine(ctx context.Context, line CustomerReturnLine) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO customer_return_items (return_id, item_id, qty, is_salable, reason)
VALUES ($1,$2,$3,$4,$5)`, line.ReturnID, line.ItemID, line.Qty, line.IsSalable, line.Reason)
	return err
}

func (tx *txRepo) ReduceOrderLineQty(ctx context.Context, orderID, itemID int64, qty float64) error {
	_, err := tx.tx.Exec(ctx, `UPDATE order_items SET qty = qty - $1 WHERE order_id=$2 AND item_id=$3`, qty, orderID, itemID)
	return err
}

func (tx *txRepo) ReduceOrderTotal(ctx context.Context, orderID int64, amount float64) error {
	_, err := tx.tx.Exec(ctx, `UPDATE orders SET total_amount = total_amount - $1, updated_at=NOW() WHERE id=$2`, amount, orderID)
	return err
}

func (tx *txRepo) CreateSupplierReturn(ctx context.Context, ret SupplierReturn) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO supplier_returns (supplier_id, status, created_at)
VALUES ($1,$2,NOW()) RETURNING id`, ret.SupplierID, ret.Status).Scan(&id)
	return id, err
}

func (tx *txRepo) InsertSupplierReturnLine(ctx context.Context, line SupplierReturnLine) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO supplier_return_items (return_id, item_id, qty, reason)
VALUES ($1,$2,$3,$4)`, line.ReturnID, line.ItemID, line.Qty, line.Reason)
	return err
}

func (tx *txRepo) SetCustomerReturnStatus(ctx context.Context, id int64, status Status) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE customer_returns SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) SetSupplierReturnStatus(ctx context.Context, id int64, status Status) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE supplier_returns SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) UpsertStock(ctx context.Context, itemID int64, qtyChange float64) (float64, error) {
	return distribution.UpsertStock(ctx, tx.tx, itemID, qtyChange)
}

func (tx *txRepo) InsertStockUpdate(ctx context.Context, update distribution.StockUpdate) error {
	return distribution.InsertStockUpdate(ctx, tx.tx, update)
}
