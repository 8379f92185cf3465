package order

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("order not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, COALESCE(product_id,''), status, amount::text, currency, COALESCE(customer_email,''), updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	o := &Order{}
	var status, amount string
	if err := row.Scan(&o.ID, &o.ProductID, &status, &amount, &o.Currency, &o.CustomerEmail, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	o.Status = Status(status)
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	o.Amount = amt
	return o, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Order, error) {
	q := `SELECT ` + selectColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRow(ctx, q, id))
}

// List returns the most recently updated orders, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status Status, limit int) ([]Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT ` + selectColumns + `
FROM orders
WHERE ($1 = '' OR status = $1)
ORDER BY updated_at DESC
LIMIT $2`
	rows, err := r.db.Query(ctx, q, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// GetForUpdate row-locks the order inside tx. Returns ErrNotFound when the order is unknown.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Order, error) {
	q := `SELECT ` + selectColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return scanOrder(tx.QueryRow(ctx, q, id))
}

// Lock row-locks the order inside tx, creating a placeholder row first when the
// order is unknown so that concurrent first deliveries serialize on the same row.
// A placeholder has an empty Status and is only visible to tx until it commits.
func Lock(ctx context.Context, tx pgx.Tx, id string) (*Order, error) {
	const ins = `INSERT INTO orders (id, status) VALUES ($1, '') ON CONFLICT (id) DO NOTHING`
	if _, err := tx.Exec(ctx, ins, id); err != nil {
		return nil, err
	}
	return GetForUpdate(ctx, tx, id)
}

func Upsert(ctx context.Context, tx pgx.Tx, o Order) error {
	const q = `
INSERT INTO orders (id, product_id, status, amount, currency, customer_email, updated_at)
VALUES ($1, NULLIF($2,''), $3, $4, $5, NULLIF($6,''), $7)
ON CONFLICT (id) DO UPDATE SET
  product_id = COALESCE(EXCLUDED.product_id, orders.product_id),
  status = EXCLUDED.status,
  amount = EXCLUDED.amount,
  currency = EXCLUDED.currency,
  customer_email = COALESCE(EXCLUDED.customer_email, orders.customer_email),
  updated_at = EXCLUDED.updated_at
`
	currency := o.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	_, err := tx.Exec(ctx, q, o.ID, o.ProductID, string(o.Status), o.Amount.StringFixed(2), currency, o.CustomerEmail, o.UpdatedAt)
	return err
}
