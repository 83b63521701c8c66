package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Insert(ctx context.Context, e *Event) error
	ViewsByProduct(ctx context.Context, from, to time.Time) ([]ProductViews, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Insert fills ID and CreatedAt when unset.
func (r *PGRepo) Insert(ctx context.Context, e *Event) error {
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO events (id, type, user_id, product_id, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, e.ID, string(e.Type), nullable(e.UserID), nullable(e.ProductID), e.CreatedAt)
	return err
}

// ViewsByProduct counts product_view events in [from, to).
func (r *PGRepo) ViewsByProduct(ctx context.Context, from, to time.Time) ([]ProductViews, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT product_id, COUNT(*)
		FROM events
		WHERE type = 'product_view' AND product_id IS NOT NULL
		  AND created_at >= $1 AND created_at < $2
		GROUP BY product_id
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductViews
	for rows.Next() {
		var pv ProductViews
		if err := rows.Scan(&pv.ProductID, &pv.Views); err != nil {
			return nil, err
		}
		out = append(out, pv)
	}
	return out, rows.Err()
}
