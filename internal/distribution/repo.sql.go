package distribution

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for stock rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional stock mutations.
type TxRepository interface {
	UpsertStock(ctx context.Context, itemID int64, qtyChange float64) (float64, error)
	SetStock(ctx context.Context, id int64, amount float64) (int64, error)
	InsertStockUpdate(ctx context.Context, update StockUpdate) error
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

const detailColumns = `d.id, d.item_id, d.in_stock_amount, d.created_at, d.updated_at,
i.code, i.name, i.unit_type, i.supplier_id, COALESCE(s.name,''), COALESCE(s.code,'')`

// GetByItem returns the stock row for an item with display joins.
func (r *Repository) GetByItem(ctx context.Context, itemID int64) (Detail, error) {
	var d Detail
	err := r.pool.QueryRow(ctx, `SELECT `+detailColumns+`
FROM distributions d
JOIN items i ON d.item_id = i.id
LEFT JOIN suppliers s ON i.supplier_id = s.id
WHERE d.item_id = $1`, itemID).Scan(&d.ID, &d.ItemID, &d.InStock, &d.CreatedAt, &d.UpdatedAt,
		&d.ItemCode, &d.ItemName, &d.UnitType, &d.SupplierID, &d.SupplierName, &d.SupplierCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return Detail{}, ErrNotFound
	}
	return d, err
}

// Get returns the stock row by its own id.
func (r *Repository) Get(ctx context.Context, id int64) (Detail, error) {
	var d Detail
	err := r.pool.QueryRow(ctx, `SELECT `+detailColumns+`
FROM distributions d
JOIN items i ON d.item_id = i.id
LEFT JOIN suppliers s ON i.supplier_id = s.id
WHERE d.id = $1`, id).Scan(&d.ID, &d.ItemID, &d.InStock, &d.CreatedAt, &d.UpdatedAt,
		&d.ItemCode, &d.ItemName, &d.UnitType, &d.SupplierID, &d.SupplierName, &d.SupplierCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return Detail{}, ErrNotFound
	}
	return d, err
}

// List returns all stock rows with display joins.
func (r *Repository) List(ctx context.Context) ([]Detail, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+detailColumns+`
FROM distributions d
JOIN items i ON d.item_id = i.id
LEFT JOIN suppliers s ON i.supplier_id = s.id
ORDER BY i.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var details []Detail
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.ID, &d.ItemID, &d.InStock, &d.CreatedAt, &d.UpdatedAt,
			&d.ItemCode, &d.ItemName, &d.UnitType, &d.SupplierID, &d.SupplierName, &d.SupplierCode); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ListStockUpdates returns the movement history, newest first.
func (r *Repository) ListStockUpdates(ctx context.Context, filter StockUpdateFilter) ([]StockUpdate, error) {
	query := `SELECT su.id, su.item_id, i.name, i.code, su.qty_change, su.type, su.ref_code, su.at
FROM stock_updates su
JOIN items i ON su.item_id = i.id
WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.ItemID != 0 {
		argCount++
		query += ` AND su.item_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.ItemID)
	}
	if filter.Type != "" {
		argCount++
		query += ` AND su.type = $` + strconv.Itoa(argCount)
		args = append(args, filter.Type)
	}
	if !filter.From.IsZero() {
		argCount++
		query += ` AND su.at >= $` + strconv.Itoa(argCount)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		argCount++
		query += ` AND su.at <= $` + strconv.Itoa(argCount)
		args = append(args, filter.To)
	}
	query += ` ORDER BY su.at DESC`
	if filter.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var updates []StockUpdate
	for rows.Next() {
		var u StockUpdate
		if err := rows.Scan(&u.ID, &u.ItemID, &u.ItemName, &u.ItemCode, &u.QtyChange, &u.Type, &u.RefCode, &u.At); err != nil {
			return nil, err
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

func (tx *txRepo) UpsertStock(ctx context.Context, itemID int64, qtyChange float64) (float64, error) {
	return UpsertStock(ctx, tx.tx, itemID, qtyChange)
}

func (tx *txRepo) SetStock(ctx context.Context, id int64, amount float64) (int64, error) {
	var itemID int64
	err := tx.tx.QueryRow(ctx, `UPDATE distributions SET in_stock_amount = $1, updated_at = NOW() WHERE id = $2 RETURNING item_id`, amount, id).Scan(&itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return itemID, err
}

func (tx *txRepo) InsertStockUpdate(ctx context.Context, update StockUpdate) error {
	return InsertStockUpdate(ctx, tx.tx, update)
}

// UpsertStock applies the shared upsert rule inside the caller's transaction:
// increment the existing row, or create one holding qtyChange. Every workflow
// that mutates stock (GRN acceptance, orders, returns) goes through this.
func UpsertStock(ctx context.Context, tx pgx.Tx, itemID int64, qtyChange float64) (float64, error) {
	var newAmount float64
	err := tx.QueryRow(ctx, `INSERT INTO distributions (item_id, in_stock_amount, created_at, updated_at)
VALUES ($1, $2, NOW(), NOW())
ON CONFLICT (item_id) DO UPDATE SET in_stock_amount = distributions.in_stock_amount + EXCLUDED.in_stock_amount, updated_at = NOW()
RETURNING in_stock_amount`, itemID, qtyChange).Scan(&newAmount)
	return newAmount, err
}

// InsertStockUpdate records one movement row inside the caller's transaction.
func InsertStockUpdate(ctx context.Context, tx pgx.Tx, update StockUpdate) error {
	at := update.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := tx.Exec(ctx, `INSERT INTO stock_updates (item_id, qty_change, type, ref_code, at)
VALUES ($1, $2, $3, $4, $5)`, update.ItemID, update.QtyChange, update.Type, update.RefCode, at)
	return err
}
