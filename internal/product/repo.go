// Package product provides the repository interface and PostgreSQL implementation for reading products.
package product

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/shoppulse/internal/money"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	// GetByIDs loads every listed product in one round trip. Missing ids
	// are absent from the result.
	GetByIDs(ctx context.Context, ids []string) (map[string]Product, error)
	ListLowStock(ctx context.Context) ([]Product, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const selectProduct = `
		SELECT id, name, COALESCE(description, ''), category, COALESCE(image_url, ''),
		       price::text, stock_qty, low_stock_threshold, created_at
		FROM products`

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.ImageURL,
		&price, &p.StockQty, &p.LowStockThreshold, &p.CreatedAt); err != nil {
		return Product{}, err
	}
	c, err := money.Parse(price)
	if err != nil {
		return Product{}, err
	}
	p.Price = c
	return p, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, selectProduct+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) GetByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, selectProduct+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// ListLowStock treats stock equal to the threshold as low. The WHERE clause
// must agree with Product.LowStock.
func (r *PGRepo) ListLowStock(ctx context.Context) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, selectProduct+`
		WHERE stock_qty <= low_stock_threshold
		ORDER BY stock_qty ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
