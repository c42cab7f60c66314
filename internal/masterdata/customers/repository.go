package customers

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
	List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error)
	Get(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, customer Customer) (Customer, error)
	Update(ctx context.Context, id int64, customer Customer) error
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	query := `SELECT id, code, name, address, email, phone, created_at, updated_at FROM customers WHERE deleted = FALSE`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM customers WHERE deleted = FALSE`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countArgs = append(countArgs, "%"+filters.Search+"%")
		countQuery += ` AND (name ILIKE $1 OR code ILIKE $1)`
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

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Address, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Customer, error) {
	query := `SELECT id, code, name, address, email, phone, created_at, updated_at FROM customers WHERE id = $1 AND deleted = FALSE`
	var c Customer
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Code, &c.Name, &c.Address, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, httpx.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, customer Customer) (Customer, error) {
	query := `INSERT INTO customers (code, name, address, email, phone, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, customer.Code, customer.Name, customer.Address, customer.Email, customer.Phone, now, now).Scan(&customer.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Customer{}, httpx.ErrDuplicate
		}
		return Customer{}, err
	}
	customer.CreatedAt = now
	customer.UpdatedAt = now
	return customer, nil
}

func (r *repository) Update(ctx context.Context, id int64, customer Customer) error {
	query := `UPDATE customers SET code = $1, name = $2, address = $3, email = $4, phone = $5, updated_at = $6 WHERE id = $7 AND deleted = FALSE`
	tag, err := r.db.Exec(ctx, query, customer.Code, customer.Name, customer.Address, customer.Email, customer.Phone, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE customers SET deleted = TRUE, updated_at = $1 WHERE id = $2 AND deleted = FALSE`, time.Now(), id)
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
		return "code " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
