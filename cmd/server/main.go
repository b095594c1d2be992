package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ossgate/internal/app"
	"ossgate/internal/config"
	"ossgate/internal/handler"
	"ossgate/internal/logger"
	"ossgate/internal/metrics"
	"ossgate/internal/router"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector, err := metrics.New()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize services
	svc, err := app.Build(ctx, cfg, collector, zl)
	if err != nil {
		return err
	}

	// Initialize handlers
	handlers := router.Handlers{
		Credentials: handler.NewCredentialHandler(svc.Credentials, zl),
		SignedURL:   handler.NewSignedURLHandler(svc.Signer, zl),
		Upload: handler.NewUploadHandler(svc.Uploads, cfg.Upload.AvatarMaxBytes(), cfg.Upload.PropertyImageMaxBytes(),
			cfg.Upload.MaxPropertyImages, zl),
		Health: handler.NewHealthHandler(svc.Credentials),
	}

	// Setup router
	r := router.Setup(cfg, svc.Tokens, handlers, collector, zl)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("provider", cfg.Storage.Provider),
			zap.String("bucket", cfg.Storage.Bucket),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
