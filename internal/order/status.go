package order

import "fmt"

type Status string

const (
	StatusCreated               Status = "created"
	StatusPaid                  Status = "paid"
	StatusAbandoned             Status = "abandoned"
	StatusSubscriptionActive    Status = "subscription_active"
	StatusSubscriptionPastDue   Status = "subscription_past_due"
	StatusSubscriptionCancelled Status = "subscription_cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusCreated, StatusPaid, StatusAbandoned,
		StatusSubscriptionActive, StatusSubscriptionPastDue, StatusSubscriptionCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown order status: %s", s)
	}
}

// StatusForEvent maps an order.* event name to the status it implies.
// order.subscription_updated carries no status change and returns false.
func StatusForEvent(event string) (Status, bool) {
	switch event {
	case "order.created":
		return StatusCreated, true
	case "order.paid":
		return StatusPaid, true
	case "order.abandoned":
		return StatusAbandoned, true
	case "order.subscription_renewed":
		return StatusSubscriptionActive, true
	case "order.subscription_payment_failed":
		return StatusSubscriptionPastDue, true
	case "order.subscription_cancelled":
		return StatusSubscriptionCancelled, true
	default:
		return "", false
	}
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusCreated: {
		StatusPaid:      true,
		StatusAbandoned: true,
	},
	StatusAbandoned: {
		// Abandoned checkouts can still be completed later.
		StatusPaid: true,
	},
	StatusPaid: {
		StatusSubscriptionActive:    true,
		StatusSubscriptionPastDue:   true,
		StatusSubscriptionCancelled: true,
	},
	StatusSubscriptionActive: {
		StatusSubscriptionActive:    true,
		StatusSubscriptionPastDue:   true,
		StatusSubscriptionCancelled: true,
	},
	StatusSubscriptionPastDue: {
		StatusSubscriptionActive:    true,
		StatusSubscriptionPastDue:   true,
		StatusSubscriptionCancelled: true,
	},
	StatusSubscriptionCancelled: {},
}

// CanTransition reports whether an order in from may move to to.
// An unknown order (from == "") may start in any status, since deliveries can arrive out of order.
func CanTransition(from, to Status) bool {
	if from == "" {
		return true
	}
	if from == to {
		return true
	}
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}
