package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"market22hooks/internal/httpapi"
	"market22hooks/internal/logging"
	"market22hooks/internal/metrics"
	"market22hooks/internal/replay"
	"market22hooks/pkg/config"
	"market22hooks/pkg/db"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.AppEnv, cfg.LogLevel, os.Stdout)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("market22hooks stopped")
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	if cfg.Market22.WebhookSecret == "" {
		log.Warn("MARKET22_WEBHOOK_SECRET is empty; every webhook will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	var ledger replay.Ledger = replay.NewMemory(0)
	if cfg.RedisURL != "" {
		rl, err := replay.NewRedisFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis replay ledger: %w", err)
		}
		defer rl.Close()
		ledger = rl
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:     cfg,
		DB:      conn,
		Log:     log,
		Metrics: metrics.New(nil),
		Ledger:  ledger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, log)
}

// serve runs srv until ctx is done or the listener fails, then shuts it down
// gracefully. A listener failure is returned instead of exiting so callers'
// deferred cleanup still runs.
func serve(ctx context.Context, srv *http.Server, log *logrus.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("http serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	return serveErr
}
