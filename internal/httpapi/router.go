package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"market22hooks/internal/admin"
	"market22hooks/internal/api"
	"market22hooks/internal/audit"
	"market22hooks/internal/events"
	"market22hooks/internal/metrics"
	"market22hooks/internal/order"
	"market22hooks/internal/product"
	"market22hooks/internal/replay"
	"market22hooks/internal/webhook"
	"market22hooks/pkg/config"
	"market22hooks/pkg/market22"
)

type Dependencies struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Log     *logrus.Logger
	Metrics *metrics.Metrics
	Ledger  replay.Ledger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(deps.Metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	webhookHandler := webhook.Handler{
		Verifier: webhook.Verifier{
			Secret: deps.Cfg.Market22.WebhookSecret,
			Window: deps.Cfg.Market22.ReplayWindow,
		},
		Ledger:       deps.Ledger,
		Store:        webhook.PGStore{DB: deps.DB},
		Log:          deps.Log,
		Metrics:      deps.Metrics,
		MaxBodyBytes: deps.Cfg.Market22.MaxBodyBytes,
	}
	if deps.DB != nil {
		webhookHandler.Audit = audit.NewRepository(deps.DB)
	}
	apiClient := market22.Client{
		BaseURL: deps.Cfg.Market22.APIBaseURL,
		APIKey:  deps.Cfg.Market22.APIKey,
	}
	if apiClient.Configured() {
		webhookHandler.Orders = apiClient
	}

	adminHandlers := admin.Handlers{
		Orders:   order.NewRepository(deps.DB),
		Products: product.NewRepository(deps.DB),
		Events: func(ctx context.Context, orderID string) ([]events.Event, error) {
			return events.ListByOrder(ctx, deps.DB, orderID)
		},
		Log: deps.Log,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/webhooks/market22", webhookHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(api.AdminAuth(deps.Cfg.AdminJWTSecret))

			r.Get("/orders", adminHandlers.ListOrders)
			r.Get("/orders/{id}", adminHandlers.GetOrder)
			r.Get("/orders/{id}/events", adminHandlers.OrderEvents)
			r.Get("/products/{id}", adminHandlers.GetProduct)
		})
	})

	return r
}
