package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ossgate/internal/config"
	"ossgate/internal/domain"
	"ossgate/internal/objectkey"
	"ossgate/internal/port"
)

// URLSigner turns durable object paths into time-limited GET URLs.
type URLSigner interface {
	// SignURL signs ossPath for expires; a non-positive expiry uses the
	// configured default. Existence of the object is never checked.
	SignURL(ctx context.Context, ossPath string, expires time.Duration) (string, error)
}

type urlSigner struct {
	creds       CredentialService
	storage     port.ObjectStorage
	cfg         *config.SigningConfig
	stsLifetime time.Duration
	observer    port.Observer
	logger      *zap.Logger
	now         func() time.Time
}

// NewURLSigner creates a new URLSigner implementation. stsLifetime is the
// duration requested for temporary credentials; expiries beyond it are signed
// with the server's own key.
func NewURLSigner(
	creds CredentialService,
	storage port.ObjectStorage,
	cfg *config.SigningConfig,
	stsLifetime time.Duration,
	observer port.Observer,
	logger *zap.Logger,
) URLSigner {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &urlSigner{
		creds:       creds,
		storage:     storage,
		cfg:         cfg,
		stsLifetime: stsLifetime,
		observer:    observer,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *urlSigner) SignURL(ctx context.Context, ossPath string, expires time.Duration) (string, error) {
	url, err := s.sign(ctx, ossPath, expires)
	s.observer.URLSigned(err)
	return url, err
}

func (s *urlSigner) sign(ctx context.Context, ossPath string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = s.cfg.DefaultExpiry
	}
	if s.cfg.MaxExpiry > 0 && expires > s.cfg.MaxExpiry {
		expires = s.cfg.MaxExpiry
	}

	if s.cfg.PlaceholderPath != "" && strings.TrimPrefix(strings.TrimSpace(ossPath), "/") == s.cfg.PlaceholderPath {
		return s.cfg.PlaceholderAsset, nil
	}

	key, err := objectkey.Clean(ossPath)
	if err != nil {
		return "", err
	}

	cred, err := s.signingCredential(expires)
	if err != nil {
		s.logger.Warn("urlSigner.SignURL: no signing credential",
			zap.String("oss_path", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}

	url, err := s.storage.PresignGet(ctx, cred, key, expires)
	if err != nil {
		s.logger.Warn("urlSigner.SignURL: presign failed",
			zap.String("oss_path", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", domain.ErrSigning, err)
	}
	return url, nil
}

// signingCredential picks the cached temporary credential when it outlives
// the requested expiry and the long-lived key otherwise. Signing never
// triggers issuance.
func (s *urlSigner) signingCredential(expires time.Duration) (domain.Credential, error) {
	if s.stsLifetime > 0 && expires > s.stsLifetime {
		return s.staticCredential()
	}

	cred, ok := s.creds.Cached()
	if !ok || cred.Expiration == nil || s.now().Add(expires).After(*cred.Expiration) {
		return s.staticCredential()
	}
	return *cred, nil
}

func (s *urlSigner) staticCredential() (domain.Credential, error) {
	cred := s.storage.StaticCredential()
	if cred.AccessKeyID == "" || cred.AccessKeySecret == "" {
		return domain.Credential{}, errors.New("long-lived key not configured")
	}
	return cred, nil
}
