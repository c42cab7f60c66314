package items

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-dms/meridian-dms/internal/masterdata/shared"
	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Item, int, error)
	Get(ctx context.Context, id int64) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id int64, item Item) error
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const itemColumns = `i.id, i.code, i.name, i.unit_type, i.unit_price, i.discount1, i.discount2,
i.second_price, i.wholesale_price, i.supplier_id, COALESCE(s.name,''), i.created_at, i.updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Item, int, error) {
	query := `SELECT ` + itemColumns + `
FROM items i
LEFT JOIN suppliers s ON i.supplier_id = s.id
WHERE i.deleted = FALSE`
	args := []interface{}{}
	argCount := 0

	countQuery := `SELECT COUNT(*) FROM items i WHERE i.deleted = FALSE`
	countArgs := []interface{}{}

	if filters.Search != "" {
		argCount++
		cond := ` AND (i.name ILIKE $` + strconv.Itoa(argCount) + ` OR i.code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += cond
		args = append(args, "%"+filters.Search+"%")
		countQuery += ` AND (i.name ILIKE $1 OR i.code ILIKE $1)`
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}
	if filters.SupplierID != nil {
		argCount++
		query += ` AND i.supplier_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.SupplierID)
		countArgs = append(countArgs, *filters.SupplierID)
		countQuery += ` AND i.supplier_id = $` + strconv.Itoa(len(countArgs))
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Code, &it.Name, &it.UnitType, &it.UnitPrice, &it.Discount1, &it.Discount2,
			&it.SecondPrice, &it.WholesalePrice, &it.SupplierID, &it.SupplierName, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Item, error) {
	query := `SELECT ` + itemColumns + `
FROM items i
LEFT JOIN suppliers s ON i.supplier_id = s.id
WHERE i.id = $1 AND i.deleted = FALSE`
	var it Item
	err := r.db.QueryRow(ctx, query, id).Scan(&it.ID, &it.Code, &it.Name, &it.UnitType, &it.UnitPrice, &it.Discount1,
		&it.Discount2, &it.SecondPrice, &it.WholesalePrice, &it.SupplierID, &it.SupplierName, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, httpx.ErrNotFound
	}
	return it, err
}

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	query := `INSERT INTO items (code, name, unit_type, unit_price, discount1, discount2, second_price, wholesale_price, supplier_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, item.Code, item.Name, item.UnitType, item.UnitPrice, item.Discount1, item.Discount2,
		item.SecondPrice, item.WholesalePrice, item.SupplierID, now).Scan(&item.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Item{}, httpx.ErrDuplicate
		}
		return Item{}, err
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	return item, nil
}

func (r *repository) Update(ctx context.Context, id int64, item Item) error {
	query := `UPDATE items SET code=$1, name=$2, unit_type=$3, unit_price=$4, discount1=$5, discount2=$6,
second_price=$7, wholesale_price=$8, supplier_id=$9, updated_at=$10 WHERE id=$11 AND deleted = FALSE`
	tag, err := r.db.Exec(ctx, query, item.Code, item.Name, item.UnitType, item.UnitPrice, item.Discount1, item.Discount2,
		item.SecondPrice, item.WholesalePrice, item.SupplierID, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE items SET deleted = TRUE, updated_at = $1 WHERE id = $2 AND deleted = FALSE`, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "i.code " + dir
	case "name":
		return "i.name " + dir
	case "unit_price":
		return "i.unit_price " + dir
	case "created_at":
		return "i.created_at " + dir
	default:
		return "i.name " + dir
	}
}
