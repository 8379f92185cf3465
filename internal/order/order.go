package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Status        Status          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// DefaultCurrency is used when neither the delivery nor the API names one.
const DefaultCurrency = "USD"
