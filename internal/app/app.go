package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ossgate/internal/config"
	"ossgate/internal/metrics"
	"ossgate/internal/port"
	"ossgate/internal/service"
	"ossgate/internal/storage"
)

// Services holds the wired application services shared by the HTTP server
// and the command line tool.
type Services struct {
	Backend     *storage.Backend
	Credentials service.CredentialService
	Signer      service.URLSigner
	Uploads     service.UploadService
	Tokens      service.TokenService
}

// Build connects to the configured storage provider and wires the services.
// collector may be nil.
func Build(ctx context.Context, cfg *config.Config, collector *metrics.Collector, logger *zap.Logger) (*Services, error) {
	backend, err := storage.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// A nil *Collector must not reach the services as a non-nil interface.
	var observer port.Observer
	if collector != nil {
		observer = collector
	}

	cache := service.NewCredentialCache(cfg.Credentials.CacheTTL, cfg.Credentials.SafetyMargin, nil)
	creds := service.NewCredentialService(backend.Roles, cache, backend.Dialect, &cfg.Storage, &cfg.Credentials, observer, logger)
	signer := service.NewURLSigner(creds, backend.Objects, &cfg.Signing, cfg.Credentials.Duration, observer, logger)
	uploads := service.NewUploadService(backend.Objects, signer, &cfg.Upload, observer, logger)

	return &Services{
		Backend:     backend,
		Credentials: creds,
		Signer:      signer,
		Uploads:     uploads,
		Tokens:      service.NewTokenService(cfg.JWT),
	}, nil
}
