package product

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusActive      Status = "active"
	StatusDeactivated Status = "deactivated"
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatusForEvent maps product.* events to a status. product.updated keeps the current status.
func StatusForEvent(event string) (Status, bool) {
	switch event {
	case "product.approved":
		return StatusActive, true
	case "product.deactivated":
		return StatusDeactivated, true
	default:
		return "", false
	}
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context, id string) (*Product, error) {
	const q = `SELECT id, COALESCE(name,''), status, updated_at FROM products WHERE id = $1`
	p := &Product{}
	var status string
	if err := r.db.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &status, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Status = Status(status)
	return p, nil
}

// Apply records a product event. An empty status leaves the stored status untouched
// (new products start pending); an empty name keeps the stored name.
func Apply(ctx context.Context, tx pgx.Tx, id, name string, status Status, at time.Time) error {
	const q = `
INSERT INTO products (id, name, status, updated_at)
VALUES ($1, NULLIF($2,''), COALESCE(NULLIF($3,''), 'pending'), $4)
ON CONFLICT (id) DO UPDATE SET
  name = COALESCE(EXCLUDED.name, products.name),
  status = COALESCE(NULLIF($3,''), products.status),
  updated_at = EXCLUDED.updated_at
`
	_, err := tx.Exec(ctx, q, id, name, string(status), at)
	return err
}
