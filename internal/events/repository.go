package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
)

// Insert appends an entry to an order's event timeline.
func Insert(ctx context.Context, tx pgx.Tx, orderID, eventType, summary string, occurredAt time.Time, data any) error {
	var s *string
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO order_events (order_id, event_type, summary, occurred_at, data)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`
	_, err := tx.Exec(ctx, q, orderID, eventType, summary, occurredAt, s)
	return err
}
