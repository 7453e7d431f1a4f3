package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"news-gateway/internal/backend"
	"news-gateway/internal/config"
	"news-gateway/internal/gateway"
	"news-gateway/internal/logger"

	"go.uber.org/zap"
)

func main() {
	// Root context cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Per-route deadlines are applied by the backend client, so no global timeout here.
	backendClient := backend.NewClient(&http.Client{})
	handler := gateway.New(cfg, backendClient, zl)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler.HTTPHandler(),
	}

	go func() {
		zl.Info("HTTP server listening",
			zap.String("addr", srv.Addr),
			zap.String("backend_url", cfg.BackendBaseURL()),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("HTTP server error", zap.Error(err))
			stop()
		}
	}()

	// Block until we receive a signal / ctx cancelled
	<-ctx.Done()
	zl.Info("shutdown signal received, shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Error("HTTP server shutdown error", zap.Error(err))
	}

	zl.Info("shutdown complete")
}
