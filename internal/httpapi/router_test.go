package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"market22hooks/internal/metrics"
	"market22hooks/internal/replay"
	"market22hooks/internal/webhook"
	"market22hooks/pkg/config"
)

// The router is exercised without a database: only paths that never reach Postgres are hit.
func newTestRouter() http.Handler {
	logger, _ := test.NewNullLogger()
	return NewRouter(Dependencies{
		Cfg: config.Config{
			Market22: config.Market22Config{WebhookSecret: "s3cr3t", ReplayWindow: 3 * time.Minute},
		},
		Log:     logger,
		Metrics: metrics.New(nil),
		Ledger:  replay.NewMemory(0),
	})
}

func TestRouter_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_WebhookRejectsBadSignature(t *testing.T) {
	body := []byte(`{"event":"order.paid","orderId":"abc123"}`)
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/market22", bytes.NewReader(body))
	req.Header.Set("x-market22-timestamp", ts)
	req.Header.Set("x-market22-signature", webhook.Sign("wrong", ts, body))

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "SIGNATURE_MISMATCH")
}

func TestRouter_AdminDisabledWithoutSecret(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/orders", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
