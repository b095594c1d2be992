package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ossgate/internal/config"
	"ossgate/internal/policy"
	"ossgate/internal/port"
	"ossgate/internal/storage/oss"
	"ossgate/internal/storage/s3"
)

// Backend bundles the provider clients selected by storage.provider.
type Backend struct {
	Objects port.ObjectStorage
	Roles   port.RoleAssumer
	Dialect policy.Dialect
}

// New builds the object storage and role assumption clients for the
// configured provider.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	switch policy.Dialect(cfg.Storage.Provider) {
	case policy.DialectOSS:
		objects, err := oss.NewOSSClient(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		roles, err := oss.NewSTSClient(&cfg.Storage, cfg.Credentials.STSEndpoint, cfg.Credentials.Timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("storage backend ready",
			zap.String("provider", "oss"),
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("endpoint", oss.Endpoint(&cfg.Storage)),
		)
		return &Backend{Objects: objects, Roles: roles, Dialect: policy.DialectOSS}, nil

	case policy.DialectS3:
		awsCfg, err := s3.LoadAWSConfig(ctx, &cfg.Storage)
		if err != nil {
			return nil, err
		}
		logger.Info("storage backend ready",
			zap.String("provider", "s3"),
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("endpoint", cfg.Storage.Endpoint),
		)
		return &Backend{
			Objects: s3.NewS3Client(awsCfg, &cfg.Storage),
			Roles:   s3.NewSTSClient(awsCfg, cfg.Credentials.STSEndpoint),
			Dialect: policy.DialectS3,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Storage.Provider)
	}
}
