package events

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID         string `json:"id"`
	OrderID    string `json:"orderId"`
	EventType  string `json:"eventType"`
	Summary    string `json:"summary"`
	OccurredAt string `json:"occurredAt"`
	Data       any    `json:"data,omitempty"`
}

func ListByOrder(ctx context.Context, db *pgxpool.Pool, orderID string) ([]Event, error) {
	const q = `
SELECT id::text, order_id, event_type, summary, occurred_at::text, COALESCE(data, '{}'::jsonb)
FROM order_events
WHERE order_id = $1
ORDER BY occurred_at ASC, id ASC
`
	rows, err := db.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.OrderID, &e.EventType, &e.Summary, &e.OccurredAt, &e.Data); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
