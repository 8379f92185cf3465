package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert writes one audit row. Used for rejected webhook deliveries, which never open a transaction.
func (r *Repository) Insert(ctx context.Context, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (action, actor, metadata)
VALUES ($1, $2, CAST($3 AS jsonb))
`
	_, err := r.db.Exec(ctx, q, action, actor, s)
	return err
}
