package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"market22hooks/internal/api"
	"market22hooks/internal/metrics"
	"market22hooks/internal/replay"
	"market22hooks/pkg/market22"
)

const defaultMaxBodyBytes = 1 << 20

// Delivery is a verified, decoded webhook ready to be recorded.
type Delivery struct {
	ReceiptID   string
	Topic       Topic
	Envelope    Envelope
	EventKey    string
	PayloadHash string
	ReceivedAt  time.Time

	// Authoritative is the order as re-fetched from the Market22 API, when available.
	Authoritative *market22.Order
}

// Store records a delivery. duplicate is true when the event key was already processed.
type Store interface {
	Record(ctx context.Context, d Delivery) (duplicate bool, err error)
}

type OrderFetcher interface {
	GetOrder(ctx context.Context, id string) (*market22.Order, error)
}

type RejectionRecorder interface {
	Insert(ctx context.Context, action, actor string, metadata any) error
}

type Handler struct {
	Verifier     Verifier
	Ledger       replay.Ledger
	Store        Store
	Log          *logrus.Logger
	Metrics      *metrics.Metrics
	MaxBodyBytes int64

	// Optional collaborators.
	Orders OrderFetcher
	Audit  RejectionRecorder
}

type deliveryResponse struct {
	Status    string `json:"status"`
	ReceiptID string `json:"receiptId,omitempty"`
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}

	if err := h.Verifier.VerifyRequest(r.Header, body); err != nil {
		h.reject(r, err)
		reason := ReasonOf(err)
		api.WriteError(w, http.StatusUnauthorized, string(reason), err.Error())
		return
	}
	h.countVerification("ok")

	signature := strings.ToLower(strings.TrimSpace(r.Header.Get(SignatureHeader)))
	claimed := false
	if h.Ledger != nil {
		window := h.Verifier.Window
		if window <= 0 {
			window = DefaultReplayWindow
		}
		fresh, err := h.Ledger.Claim(r.Context(), signature, 2*window)
		switch {
		case err != nil:
			// Fail open: the event key in the store still prevents double-processing.
			h.logger().WithError(err).Warn("replay ledger claim failed")
			if h.Metrics != nil {
				h.Metrics.ReplayLedgerErrors.Inc()
			}
		case !fresh:
			h.countDelivery("", "duplicate")
			api.WriteJSON(w, http.StatusOK, deliveryResponse{Status: "duplicate"})
			return
		default:
			claimed = true
		}
	}

	env, topic, err := DecodeEnvelope(body)
	if err != nil {
		// Accept so the platform does not retry a payload we will never understand.
		h.logger().WithError(err).WithField("event", env.Event).Info("webhook ignored")
		h.countDelivery(string(topic), "ignored")
		api.WriteJSON(w, http.StatusOK, deliveryResponse{Status: "ignored"})
		return
	}

	d := Delivery{
		ReceiptID:   uuid.NewString(),
		Topic:       topic,
		Envelope:    env,
		EventKey:    env.EventKey(strings.TrimSpace(r.Header.Get(TimestampHeader)), body),
		PayloadHash: sha256Hex(body),
		ReceivedAt:  h.now().UTC(),
	}
	if topic.Resource() == "order" && h.Orders != nil {
		if o, err := h.Orders.GetOrder(r.Context(), env.OrderID); err != nil {
			h.logger().WithError(err).WithField("order_id", env.OrderID).Warn("order refetch failed; using payload")
		} else {
			d.Authoritative = o
		}
	}

	log := h.logger().WithFields(logrus.Fields{
		"topic":      topic,
		"event_key":  d.EventKey,
		"receipt_id": d.ReceiptID,
	})

	duplicate, err := h.Store.Record(r.Context(), d)
	if err != nil {
		// 5xx makes Market22 redeliver; the event key keeps that idempotent.
		log.WithError(err).Error("webhook record failed")
		if claimed {
			h.release(r.Context(), signature)
		}
		h.countDelivery(string(topic), "error")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to record delivery")
		return
	}
	if duplicate {
		log.Debug("webhook already processed")
		h.countDelivery(string(topic), "duplicate")
		api.WriteJSON(w, http.StatusOK, deliveryResponse{Status: "duplicate"})
		return
	}

	log.Info("webhook accepted")
	h.countDelivery(string(topic), "accepted")
	api.WriteJSON(w, http.StatusOK, deliveryResponse{Status: "accepted", ReceiptID: d.ReceiptID})
}

func (h Handler) reject(r *http.Request, err error) {
	reason := ReasonOf(err)
	if reason == "" {
		reason = RejectReason("UNKNOWN")
	}
	h.countVerification(string(reason))

	fields := logrus.Fields{
		"reason":    reason,
		"remote":    r.RemoteAddr,
		"timestamp": r.Header.Get(TimestampHeader),
	}
	h.logger().WithFields(fields).Warn("webhook rejected")

	if h.Audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
	defer cancel()
	if aerr := h.Audit.Insert(ctx, "WEBHOOK_REJECTED", "market22", fields); aerr != nil && !errors.Is(aerr, context.Canceled) {
		h.logger().WithError(aerr).Warn("audit insert failed")
	}
}

// release drops the ledger claim of a delivery that was not recorded, so the
// platform's redelivery of the same signed request is processed.
func (h Handler) release(ctx context.Context, signature string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := h.Ledger.Release(ctx, signature); err != nil {
		h.logger().WithError(err).Warn("replay ledger release failed")
		if h.Metrics != nil {
			h.Metrics.ReplayLedgerErrors.Inc()
		}
	}
}

func (h Handler) now() time.Time {
	if h.Verifier.Now != nil {
		return h.Verifier.Now()
	}
	return time.Now()
}

func (h Handler) logger() *logrus.Logger {
	if h.Log != nil {
		return h.Log
	}
	return logrus.StandardLogger()
}

func (h Handler) countVerification(outcome string) {
	if h.Metrics != nil {
		h.Metrics.WebhookVerifications.WithLabelValues(outcome).Inc()
	}
}

func (h Handler) countDelivery(topic, result string) {
	if h.Metrics == nil {
		return
	}
	if topic == "" || !Topic(topic).Known() {
		topic = "unknown"
	}
	h.Metrics.WebhookDeliveries.WithLabelValues(topic, result).Inc()
}
