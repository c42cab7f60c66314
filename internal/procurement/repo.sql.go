package procurement

import (
	"context"
	"errors"
	"strconv"
	"time"

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
	CreatePO(ctx context.Context, po PurchaseOrder) (int64, error)
	InsertPOLine(ctx context.Context, line POLine) error
	UpdatePO(ctx context.Context, id int64, orderDate time.Time, supplierID int64) error
	UpdatePOStatus(ctx context.Context, id int64, status POStatus) error
	CreateGRN(ctx context.Context, grn GoodsReceivedNote) (int64, error)
	InsertGRNLine(ctx context.Context, line GRNLine) error
	UpdateGRNStatus(ctx context.Context, id int64, status GRNStatus) error
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

// SupplierExists reports whether a live supplier row exists.
func (r *Repository) SupplierExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE id=$1 AND deleted=FALSE)`, id).Scan(&exists)
	return exists, err
}

// GetPO returns purchase order header and lines.
func (r *Repository) GetPO(ctx context.Context, id int64) (PurchaseOrder, []POLine, error) {
	var po PurchaseOrder
	err := r.pool.QueryRow(ctx, `SELECT p.id, p.code, p.supplier_id, COALESCE(s.name,''), p.status, p.order_date, p.created_at, p.updated_at
FROM purchase_orders p
LEFT JOIN suppliers s ON p.supplier_id = s.id
WHERE p.id=$1 AND p.status <> 'DELETED'`, id).
		Scan(&po.ID, &po.Code, &po.SupplierID, &po.SupplierName, &po.Status, &po.OrderDate, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, nil, ErrNotFound
		}
		return PurchaseOrder{}, nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT l.id, l.po_id, l.item_id, COALESCE(i.name,''), COALESCE(i.unit_price,0), l.qty
FROM purchase_order_items l
LEFT JOIN items i ON l.item_id = i.id
WHERE l.po_id=$1 ORDER BY l.id`, id)
	if err != nil {
		return PurchaseOrder{}, nil, err
	}
	defer rows.Close()
	var lines []POLine
	for rows.Next() {
		var line POLine
		if err := rows.Scan(&line.ID, &line.POID, &line.ItemID, &line.ItemName, &line.UnitPrice, &line.Qty); err != nil {
			return PurchaseOrder{}, nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return PurchaseOrder{}, nil, err
	}
	return po, lines, nil
}

// ListFilters narrows PO and GRN listings.
type ListFilters struct {
	Status     string
	SupplierID int64
}

// ListPOs returns purchase orders excluding deleted ones, newest first.
func (r *Repository) ListPOs(ctx context.Context, filters ListFilters) ([]PurchaseOrder, error) {
	query := `SELECT p.id, p.code, p.supplier_id, COALESCE(s.name,''), p.status, p.order_date, p.created_at, p.updated_at
FROM purchase_orders p
LEFT JOIN suppliers s ON p.supplier_id = s.id
WHERE p.status <> 'DELETED'`
	args := []interface{}{}
	argCount := 0
	if filters.Status != "" {
		argCount++
		query += ` AND p.status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}
	if filters.SupplierID != 0 {
		argCount++
		query += ` AND p.supplier_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.SupplierID)
	}
	query += ` ORDER BY p.order_date DESC, p.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pos []PurchaseOrder
	for rows.Next() {
		var po PurchaseOrder
		if err := rows.Scan(&po.ID, &po.Code, &po.SupplierID, &po.SupplierName, &po.Status, &po.OrderDate, &po.CreatedAt, &po.UpdatedAt); err != nil {
			return nil, err
		}
		pos = append(pos, po)
	}
	return pos, rows.Err()
}

// GetGRN returns goods received note header and lines.
func (r *Repository) GetGRN(ctx context.Context, id int64) (GoodsReceivedNote, []GRNLine, error) {
	var grn GoodsReceivedNote
	err := r.pool.QueryRow(ctx, `SELECT g.id, g.code, g.po_id, COALESCE(p.code,''), g.supplier_id, COALESCE(s.name,''), g.status, g.receive_date, g.created_at
FROM goods_received_notes g
LEFT JOIN purchase_orders p ON g.po_id = p.id
LEFT JOIN suppliers s ON g.supplier_id = s.id
WHERE g.id=$1 AND g.status <> 'DELETED'`, id).
		Scan(&grn.ID, &grn.Code, &grn.POID, &grn.POCode, &grn.SupplierID, &grn.SupplierName, &grn.Status, &grn.ReceiveDate, &grn.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return GoodsReceivedNote{}, nil, ErrNotFound
		}
		return GoodsReceivedNote{}, nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT l.id, l.grn_id, l.item_id, COALESCE(i.name,''), l.ordered_qty, l.received_qty
FROM goods_received_note_items l
LEFT JOIN items i ON l.item_id = i.id
WHERE l.grn_id=$1 ORDER BY l.id`, id)
	if err != nil {
		return GoodsReceivedNote{}, nil, err
	}
	defer rows.Close()
	var lines []GRNLine
	for rows.Next() {
		var line GRNLine
		if err := rows.Scan(&line.ID, &line.GRNID, &line.ItemID, &line.ItemName, &line.OrderedQty, &line.ReceivedQty); err != nil {
			return GoodsReceivedNote{}, nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return GoodsReceivedNote{}, nil, err
	}
	return grn, lines, nil
}

// ListGRNs returns goods received notes excluding deleted ones, newest first.
func (r *Repository) ListGRNs(ctx context.Context, filters ListFilters) ([]GoodsReceivedNote, error) {
	query := `SELECT g.id, g.code, g.po_id, COALESCE(p.code,''), g.supplier_id, COALESCE(s.name,''), g.status, g.receive_date, g.created_at
FROM goods_received_notes g
LEFT JOIN purchase_orders p ON g.po_id = p.id
LEFT JOIN suppliers s ON g.supplier_id = s.id
WHERE g.status <> 'DELETED'`
	args := []interface{}{}
	argCount := 0
	if filters.Status != "" {
		argCount++
		query += ` AND g.status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}
	if filters.SupplierID != 0 {
		argCount++
		query += ` AND g.supplier_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.SupplierID)
	}
	query += ` ORDER BY g.receive_date DESC, g.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var grns []GoodsReceivedNote
	for rows.Next() {
		var grn GoodsReceivedNote
		if err := rows.Scan(&grn.ID, &grn.Code, &grn.POID, &grn.POCode, &grn.SupplierID, &grn.SupplierName, &grn.Status, &grn.ReceiveDate, &grn.CreatedAt); err != nil {
			return nil, err
		}
		grns = append(grns, grn)
	}
	return grns, rows.Err()
}

func (tx *txRepo) CreatePO(ctx context.Context, po PurchaseOrder) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO purchase_orders (code, supplier_id, status, order_date, created_at, updated_at)
VALUES ($1,$2,$3,$4,NOW(),NOW()) RETURNING id`, po.Code, po.SupplierID, po.Status, po.OrderDate).Scan(&id)
	return id, mapConstraint(err)
}

func (tx *txRepo) InsertPOLine(ctx context.Context, line POLine) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO purchase_order_items (po_id, item_id, qty) VALUES ($1,$2,$3)`, line.POID, line.ItemID, line.Qty)
	return err
}

func (tx *txRepo) UpdatePO(ctx context.Context, id int64, orderDate time.Time, supplierID int64) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE purchase_orders SET order_date=$1, supplier_id=$2, updated_at=NOW() WHERE id=$3 AND status <> 'DELETED'`, orderDate, supplierID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) UpdatePOStatus(ctx context.Context, id int64, status POStatus) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE purchase_orders SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) CreateGRN(ctx context.Context, grn GoodsReceivedNote) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO goods_received_notes (code, po_id, supplier_id, status, receive_date, created_at)
VALUES ($1,$2,$3,$4,$5,NOW()) RETURNING id`, grn.Code, grn.POID, grn.SupplierID, grn.Status, grn.ReceiveDate).Scan(&id)
	return id, mapConstraint(err)
}

func (tx *txRepo) InsertGRNLine(ctx context.Context, line GRNLine) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO goods_received_note_items (grn_id, item_id, ordered_qty, received_qty)
VALUES ($1,$2,$3,$4)`, line.GRNID, line.ItemID, line.OrderedQty, line.ReceivedQty)
	return err
}

func (tx *txRepo) UpdateGRNStatus(ctx context.Context, id int64, status GRNStatus) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE goods_received_notes SET status=$1 WHERE id=$2`, status, id)
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

func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
