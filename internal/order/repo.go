package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/shoppulse/internal/money"
)

var (
	ErrNotFound = errors.New("order not found")
)

// Repository reads orders and their aggregates. Every window is
// [from, to) on created_at and skips cancelled orders.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error

	List(ctx context.Context, from, to time.Time) ([]Order, error)
	Summary(ctx context.Context, from, to time.Time) (Summary, error)
	SalesByProduct(ctx context.Context, from, to time.Time) ([]ProductSales, error)
	UnitsSold(ctx context.Context, productIDs []string, from, to time.Time) (map[string]int, error)
	SpendByUser(ctx context.Context, from, to time.Time) ([]UserSpend, error)
	CountByStatus(ctx context.Context, from, to time.Time) ([]StatusCount, error)
}

// PGRepo window queries all filter created_at >= $1 AND created_at < $2
// AND status <> 'cancelled'. The analytics in-memory test store applies the
// same predicate, so change both together.
type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		o     Order
		total string
	)
	err := r.db.QueryRow(ctx, `
    SELECT id, user_id, status, total::text, created_at
    FROM orders WHERE id=$1
  `, id).Scan(&o.ID, &o.UserID, &o.Status, &total, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Total, err = money.Parse(total); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
    UPDATE orders
    SET status = $2, updated_at = NOW()
    WHERE id = $1
  `, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, from, to time.Time) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT id, user_id, status, total::text, created_at
    FROM orders
    WHERE created_at >= $1 AND created_at < $2 AND status <> 'cancelled'
    ORDER BY created_at
  `, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var (
			o     Order
			total string
		)
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &total, &o.CreatedAt); err != nil {
			return nil, err
		}
		if o.Total, err = money.Parse(total); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) Summary(ctx context.Context, from, to time.Time) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		s   Summary
		sum string
	)
	if err := r.db.QueryRow(ctx, `
    SELECT COALESCE(SUM(total), 0)::text, COUNT(*)
    FROM orders
    WHERE created_at >= $1 AND created_at < $2 AND status <> 'cancelled'
  `, from, to).Scan(&sum, &s.Orders); err != nil {
		return Summary{}, err
	}
	rev, err := money.Parse(sum)
	if err != nil {
		return Summary{}, err
	}
	s.Revenue = rev
	return s, nil
}

func (r *PGRepo) SalesByProduct(ctx context.Context, from, to time.Time) ([]ProductSales, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT oi.product_id,
           COALESCE(SUM(oi.price_at_purchase * oi.quantity), 0)::text,
           COALESCE(SUM(oi.quantity), 0)
    FROM order_items oi
    JOIN orders o ON o.id = oi.order_id
    WHERE o.created_at >= $1 AND o.created_at < $2 AND o.status <> 'cancelled'
    GROUP BY oi.product_id
  `, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductSales
	for rows.Next() {
		var (
			ps  ProductSales
			rev string
		)
		if err := rows.Scan(&ps.ProductID, &rev, &ps.Units); err != nil {
			return nil, err
		}
		if ps.Revenue, err = money.Parse(rev); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func (r *PGRepo) UnitsSold(ctx context.Context, productIDs []string, from, to time.Time) (map[string]int, error) {
	out := make(map[string]int, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT oi.product_id, COALESCE(SUM(oi.quantity), 0)
    FROM order_items oi
    JOIN orders o ON o.id = oi.order_id
    WHERE o.created_at >= $1 AND o.created_at < $2 AND o.status <> 'cancelled'
      AND oi.product_id = ANY($3)
    GROUP BY oi.product_id
  `, from, to, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    string
			units int
		)
		if err := rows.Scan(&id, &units); err != nil {
			return nil, err
		}
		out[id] = units
	}
	return out, rows.Err()
}

func (r *PGRepo) SpendByUser(ctx context.Context, from, to time.Time) ([]UserSpend, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT o.user_id,
           COALESCE(u.name, ''), COALESCE(u.email, ''), COALESCE(u.role, ''),
           SUM(o.total)::text, COUNT(*)
    FROM orders o
    LEFT JOIN users u ON u.id = o.user_id
    WHERE o.created_at >= $1 AND o.created_at < $2 AND o.status <> 'cancelled'
    GROUP BY o.user_id, u.name, u.email, u.role
  `, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserSpend
	for rows.Next() {
		var (
			us    UserSpend
			spend string
		)
		if err := rows.Scan(&us.UserID, &us.Name, &us.Email, &us.Role, &spend, &us.Orders); err != nil {
			return nil, err
		}
		if us.Spend, err = money.Parse(spend); err != nil {
			return nil, fmt.Errorf("user %s spend: %w", us.UserID, err)
		}
		out = append(out, us)
	}
	return out, rows.Err()
}

func (r *PGRepo) CountByStatus(ctx context.Context, from, to time.Time) ([]StatusCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT status, COUNT(*)
    FROM orders
    WHERE created_at >= $1 AND created_at < $2 AND status <> 'cancelled'
    GROUP BY status
  `, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
