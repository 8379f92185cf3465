package webhook

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrUnknownEvent = errors.New("webhook: unknown event")

// Envelope is the common shape of every Market22 delivery. It is only decoded
// after the raw body has been verified.
type Envelope struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	OrderID   string          `json:"orderId"`
	ProductID string          `json:"productId"`
	Data      json.RawMessage `json:"data"`
}

// OrderData carries the order fields Market22 includes in order.* deliveries.
type OrderData struct {
	ProductID     string          `json:"productId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CustomerEmail string          `json:"customerEmail"`
}

type ProductData struct {
	Name string `json:"name"`
}

// DecodeEnvelope parses body and normalizes its event name.
func DecodeEnvelope(body []byte) (Envelope, Topic, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, "", err
	}
	env.OrderID = strings.TrimSpace(env.OrderID)
	env.ProductID = strings.TrimSpace(env.ProductID)

	topic := NormalizeTopic(env.Event)
	if !topic.Known() {
		return env, topic, ErrUnknownEvent
	}
	if topic.Resource() == "order" && env.OrderID == "" {
		return env, topic, errors.New("webhook: order event without orderId")
	}
	if topic.Resource() == "product" && env.ProductID == "" {
		return env, topic, errors.New("webhook: product event without productId")
	}
	return env, topic, nil
}

// EventKey is the idempotency key for a delivery: the platform event id when present,
// otherwise a hash of the signed timestamp and the raw body. Recurring events such as
// subscription renewals can repeat a body byte for byte, but each one is signed with
// its own timestamp.
func (e Envelope) EventKey(timestamp string, body []byte) string {
	if id := strings.TrimSpace(e.ID); id != "" {
		return id
	}
	material := make([]byte, 0, len(timestamp)+len(body))
	material = append(material, timestamp...)
	material = append(material, body...)
	return sha256Hex(material)
}

func (e Envelope) OrderData() (OrderData, error) {
	var d OrderData
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return d, nil
	}
	err := json.Unmarshal(e.Data, &d)
	return d, err
}

func (e Envelope) ProductData() (ProductData, error) {
	var d ProductData
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return d, nil
	}
	err := json.Unmarshal(e.Data, &d)
	return d, err
}

func sha256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
