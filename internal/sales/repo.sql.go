package sales

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-dms/meridian-dms/internal/distribution"
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
	CreateOrder(ctx context.Context, order Order) (int64, error)
	InsertOrderLine(ctx context.Context, line OrderLine) error
	DeleteOrderLines(ctx context.Context, orderID int64) error
	UpdateOrderHeader(ctx context.Context, order Order) error
	SoftDeleteOrder(ctx context.Context, id int64) error
	AddPaidAmount(ctx context.Context, id int64, delta float64) (Order, error)
	SetPaymentStatus(ctx context.Context, id int64, status PaymentStatus) error
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

// CustomerExists reports whether a live customer row exists.
func (r *Repository) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id=$1 AND deleted=FALSE)`, id).Scan(&exists)
	return exists, err
}

const orderColumns = `o.id, o.code, o.customer_id, COALESCE(c.name,''), COALESCE(c.code,''), o.payment_method,
o.total_amount, o.discount, o.paid_amount, o.payment_status, o.order_date, o.created_at, o.updated_at`

// GetOrder returns the order header and its lines.
func (r *Repository) GetOrder(ctx context.Context, id int64) (Order, []OrderLine, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+`
FROM orders o
LEFT JOIN customers c ON o.customer_id = c.id
WHERE o.id=$1 AND o.deleted=FALSE`, id).
		Scan(&o.ID, &o.Code, &o.CustomerID, &o.CustomerName, &o.CustomerCode, &o.PaymentMethod,
			&o.TotalAmount, &o.Discount, &o.PaidAmount, &o.PaymentStatus, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, nil, ErrNotFound
		}
		return Order{}, nil, err
	}
	lines, err := r.orderLines(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	return o, lines, nil
}

func (r *Repository) orderLines(ctx context.Context, orderID int64) ([]OrderLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT l.id, l.order_id, l.item_id, COALESCE(i.name,''), l.qty, l.discount1, l.discount2, l.item_price
FROM order_items l
LEFT JOIN items i ON l.item_id = i.id
WHERE l.order_id=$1 ORDER BY l.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []OrderLine
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ItemID, &line.ItemName, &line.Qty, &line.Discount1, &line.Discount2, &line.ItemPrice); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// ListFilters narrows the order listing.
type ListFilters struct {
	CustomerID    int64
	PaymentStatus string
}

// ListOrders returns non-deleted orders, newest first.
func (r *Repository) ListOrders(ctx context.Context, filters ListFilters) ([]Order, error) {
	query := `SELECT ` + orderColumns + `
FROM orders o
LEFT JOIN customers c ON o.customer_id = c.id
WHERE o.deleted=FALSE`
	args := []interface{}{}
	argCount := 0
	if filters.CustomerID != 0 {
		argCount++
		query += ` AND o.customer_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.CustomerID)
	}
	if filters.PaymentStatus != "" {
		argCount++
		query += ` AND o.payment_status = $` + strconv.Itoa(argCount)
		args = append(args, filters.PaymentStatus)
	}
	query += ` ORDER BY o.order_date DESC, o.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Code, &o.CustomerID, &o.CustomerName, &o.CustomerCode, &o.PaymentMethod,
			&o.TotalAmount, &o.Discount, &o.PaidAmount, &o.PaymentStatus, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (tx *txRepo) CreateOrder(ctx context.Context, order Order) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO orders (code, customer_id, payment_method, total_amount, discount, paid_amount, payment_status, order_date, deleted, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,FALSE,NOW(),NOW()) RETURNING id`,
		order.Code, order.CustomerID, order.PaymentMethod, order.TotalAmount, order.Discount, order.PaidAmount, order.PaymentStatus, order.OrderDate).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return 0, ErrDuplicate
	}
	return id, err
}

func (tx *txRepo) InsertOrderLine(ctx context.Context, line OrderLine) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO order_items (order_id, item_id, qty, discount1, discount2, item_price)
VALUES ($1,$2,$3,$4,$5,$6)`, line.OrderID, line.ItemID, line.Qty, line.Discount1, line.Discount2, line.ItemPrice)
	return err
}

func (tx *txRepo) DeleteOrderLines(ctx context.Context, orderID int64) error {
	_, err := tx.tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, orderID)
	return err
}

func (tx *txRepo) UpdateOrderHeader(ctx context.Context, order Order) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE orders SET customer_id=$1, payment_method=$2, total_amount=$3, discount=$4, order_date=$5, updated_at=NOW()
WHERE id=$6 AND deleted=FALSE`, order.CustomerID, order.PaymentMethod, order.TotalAmount, order.Discount, order.OrderDate, order.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) SoftDeleteOrder(ctx context.Context, id int64) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE orders SET deleted=TRUE, updated_at=NOW() WHERE id=$1 AND deleted=FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) AddPaidAmount(ctx context.Context, id int64, delta float64) (Order, error) {
	var o Order
	err := tx.tx.QueryRow(ctx, `UPDATE orders SET paid_amount = paid_amount + $1, updated_at=NOW()
WHERE id=$2 AND deleted=FALSE
RETURNING id, code, total_amount, discount, paid_amount, payment_status`, delta, id).
		Scan(&o.ID, &o.Code, &o.TotalAmount, &o.Discount, &o.PaidAmount, &o.PaymentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	return o, err
}

func (tx *txRepo) SetPaymentStatus(ctx context.Context, id int64, status PaymentStatus) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE orders SET payment_status=$1, updated_at=NOW() WHERE id=$2 AND deleted=FALSE`, status, id)
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
