package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("MARKET22_REPLAY_WINDOW", "")
	t.Setenv("WEBHOOK_MAX_BODY_BYTES", "")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 3*time.Minute, cfg.Market22.ReplayWindow)
	assert.Equal(t, int64(1<<20), cfg.Market22.MaxBodyBytes)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("MARKET22_WEBHOOK_SECRET", "whsec")
	t.Setenv("MARKET22_REPLAY_WINDOW", "90s")
	t.Setenv("WEBHOOK_MAX_BODY_BYTES", "2048")

	cfg := Load()
	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, "whsec", cfg.Market22.WebhookSecret)
	assert.Equal(t, 90*time.Second, cfg.Market22.ReplayWindow)
	assert.Equal(t, int64(2048), cfg.Market22.MaxBodyBytes)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MARKET22_REPLAY_WINDOW", "soon")
	t.Setenv("WEBHOOK_MAX_BODY_BYTES", "-1")

	cfg := Load()
	assert.Equal(t, 3*time.Minute, cfg.Market22.ReplayWindow)
	assert.Equal(t, int64(1<<20), cfg.Market22.MaxBodyBytes)
}
