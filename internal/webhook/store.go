package webhook

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"market22hooks/internal/events"
	"market22hooks/internal/order"
	"market22hooks/internal/product"
	"market22hooks/pkg/db"
)

// PGStore records deliveries in Postgres. The webhook_events insert and the
// order/product update share one transaction, so a delivery is applied at most once.
type PGStore struct {
	DB *pgxpool.Pool
}

func (s PGStore) Record(ctx context.Context, d Delivery) (bool, error) {
	duplicate := false
	err := db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		if err := insertWebhookEvent(ctx, tx, d); err != nil {
			if db.IsUniqueViolation(err) {
				duplicate = true
				return nil
			}
			return fmt.Errorf("insert webhook event: %w", err)
		}

		switch d.Topic.Resource() {
		case "order":
			return applyOrder(ctx, tx, d)
		case "product":
			return applyProduct(ctx, tx, d)
		default:
			return nil
		}
	})
	return duplicate, err
}

func insertWebhookEvent(ctx context.Context, tx pgx.Tx, d Delivery) error {
	const q = `
INSERT INTO webhook_events (topic, event_key, payload_hash, receipt_id, processed_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := tx.Exec(ctx, q, string(d.Topic), d.EventKey, d.PayloadHash, d.ReceiptID, d.ReceivedAt)
	return err
}

func applyOrder(ctx context.Context, tx pgx.Tx, d Delivery) error {
	current, err := order.Lock(ctx, tx, d.Envelope.OrderID)
	if err != nil {
		return fmt.Errorf("lock order: %w", err)
	}
	if current.Status == "" {
		current = nil
	}

	data, err := d.Envelope.OrderData()
	if err != nil {
		// Malformed data still moves the status; the identifiers were already validated.
		data = OrderData{}
	}

	next, from, to, applied := NextOrderState(current, d, data)
	if err := order.Upsert(ctx, tx, next); err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}

	summary := "Order " + string(to)
	eventType := string(d.Topic)
	if !applied {
		summary = fmt.Sprintf("Ignored transition %s -> %s", from, to)
	}
	return events.Insert(ctx, tx, next.ID, eventType, summary, d.ReceivedAt, map[string]any{
		"receiptId": d.ReceiptID,
		"from":      from,
		"to":        to,
		"applied":   applied,
	})
}

// NextOrderState merges a delivery into the stored order. It returns the order to
// persist, the previous and requested statuses, and whether the status change was allowed.
// The Market22 API's view of the order, when present, wins over the payload.
func NextOrderState(current *order.Order, d Delivery, data OrderData) (next order.Order, from, to order.Status, applied bool) {
	if current != nil {
		next = *current
		from = current.Status
	}
	next.ID = d.Envelope.OrderID
	next.UpdatedAt = d.ReceivedAt

	if data.ProductID != "" {
		next.ProductID = data.ProductID
	}
	if !data.Amount.IsZero() {
		next.Amount = data.Amount
	}
	if data.Currency != "" {
		next.Currency = data.Currency
	}
	if data.CustomerEmail != "" {
		next.CustomerEmail = data.CustomerEmail
	}

	to, ok := order.StatusForEvent(string(d.Topic))
	if !ok {
		// order.subscription_updated changes details, not lifecycle.
		to = from
		if to == "" {
			to = order.StatusSubscriptionActive
		}
	}

	if a := d.Authoritative; a != nil {
		if a.ProductID != "" {
			next.ProductID = a.ProductID
		}
		if !a.Amount.IsZero() {
			next.Amount = a.Amount
		}
		if a.Currency != "" {
			next.Currency = a.Currency
		}
		if a.CustomerEmail != "" {
			next.CustomerEmail = a.CustomerEmail
		}
		if s, err := order.ParseStatus(a.Status); err == nil {
			to = s
		}
	}

	if next.Currency == "" {
		next.Currency = order.DefaultCurrency
	}

	applied = order.CanTransition(from, to)
	if applied {
		next.Status = to
	} else {
		next.Status = from
	}
	return next, from, to, applied
}

func applyProduct(ctx context.Context, tx pgx.Tx, d Delivery) error {
	data, err := d.Envelope.ProductData()
	if err != nil {
		data = ProductData{}
	}
	status, _ := product.StatusForEvent(string(d.Topic))
	if err := product.Apply(ctx, tx, d.Envelope.ProductID, data.Name, status, d.ReceivedAt); err != nil {
		return fmt.Errorf("apply product: %w", err)
	}
	return nil
}
