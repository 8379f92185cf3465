package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"market22hooks/internal/api"
	"market22hooks/internal/events"
	"market22hooks/internal/order"
	"market22hooks/internal/product"
)

type OrderReader interface {
	Get(ctx context.Context, id string) (*order.Order, error)
	List(ctx context.Context, status order.Status, limit int) ([]order.Order, error)
}

type ProductReader interface {
	Get(ctx context.Context, id string) (*product.Product, error)
}

type EventLister func(ctx context.Context, orderID string) ([]events.Event, error)

// Handlers serves the read-only views over recorded deliveries.
type Handlers struct {
	Orders   OrderReader
	Products ProductReader
	Events   EventLister
	Log      *logrus.Logger
}

func (h Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	var status order.Status
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		parsed, err := order.ParseStatus(s)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
			return
		}
		status = parsed
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	out, err := h.Orders.List(r.Context(), status, limit)
	if err != nil {
		h.internal(w, err, "list orders")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"orders": out})
}

func (h Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, order.ErrNotFound) {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "order not found")
		return
	}
	if err != nil {
		h.internal(w, err, "get order")
		return
	}
	api.WriteJSON(w, http.StatusOK, o)
}

func (h Handlers) OrderEvents(w http.ResponseWriter, r *http.Request) {
	out, err := h.Events(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.internal(w, err, "list order events")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"events": out})
}

func (h Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, product.ErrNotFound) {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "product not found")
		return
	}
	if err != nil {
		h.internal(w, err, "get product")
		return
	}
	api.WriteJSON(w, http.StatusOK, p)
}

func (h Handlers) internal(w http.ResponseWriter, err error, op string) {
	if h.Log != nil {
		h.Log.WithError(err).Error(op)
	}
	api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}
