package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"ossgate/internal/config"
	"ossgate/internal/domain"
	"ossgate/internal/objectkey"
	"ossgate/internal/policy"
	"ossgate/internal/port"
)

// CredentialScope restricts an issued credential to keys under Prefix.
// The zero value is the default scope covering the whole bucket.
type CredentialScope struct {
	Prefix string
}

// CredentialService issues temporary upload credentials.
type CredentialService interface {
	// Issue always calls the provider.
	Issue(ctx context.Context, scope CredentialScope) (*domain.Credential, error)
	// Get serves the default scope from the cache and issues on a miss.
	Get(ctx context.Context, scope CredentialScope) (*domain.Credential, error)
	// Cached returns the default-scope credential only if one is cached. It
	// never calls the provider.
	Cached() (*domain.Credential, bool)
	Invalidate()
	// CachedUntil reports until when the cached credential is served.
	CachedUntil() (time.Time, bool)
}

type credentialService struct {
	assumer    port.RoleAssumer
	cache      *CredentialCache
	dialect    policy.Dialect
	storageCfg *config.StorageConfig
	credCfg    *config.CredentialsConfig
	observer   port.Observer
	logger     *zap.Logger
	group      singleflight.Group
}

// NewCredentialService creates a new CredentialService implementation.
func NewCredentialService(
	assumer port.RoleAssumer,
	cache *CredentialCache,
	dialect policy.Dialect,
	storageCfg *config.StorageConfig,
	credCfg *config.CredentialsConfig,
	observer port.Observer,
	logger *zap.Logger,
) CredentialService {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &credentialService{
		assumer:    assumer,
		cache:      cache,
		dialect:    dialect,
		storageCfg: storageCfg,
		credCfg:    credCfg,
		observer:   observer,
		logger:     logger,
	}
}

func (s *credentialService) Issue(ctx context.Context, scope CredentialScope) (*domain.Credential, error) {
	prefix, err := objectkey.CleanPrefix(scope.Prefix)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, prefix)
}

func (s *credentialService) issue(ctx context.Context, prefix string) (*domain.Credential, error) {
	doc := s.dialect.UploadPolicy(s.storageCfg.Bucket, prefix, s.credCfg.AllowRead)
	raw, encoded, err := doc.Encode()
	if err != nil {
		return nil, fmt.Errorf("encoding upload policy: %w", err)
	}

	if s.credCfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.credCfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := s.assumer.AssumeRole(ctx, port.AssumeRoleInput{
		RoleARN:     s.credCfg.RoleARN,
		SessionName: s.credCfg.SessionName,
		Policy:      raw,
		Duration:    s.credCfg.Duration,
	})
	s.observer.CredentialIssued(time.Since(start), err)
	if err != nil {
		s.logger.Error("credentialService.Issue: role assumption failed",
			zap.String("role_arn", s.credCfg.RoleARN),
			zap.String("prefix", prefix),
			zap.Error(err),
		)
		s.cache.Invalidate()
		return nil, fmt.Errorf("%w: %v", domain.ErrCredentialIssuance, err)
	}

	cred := &domain.Credential{
		AccessKeyID:     out.AccessKeyID,
		AccessKeySecret: out.AccessKeySecret,
		SecurityToken:   out.SecurityToken,
		Region:          s.storageCfg.Region,
		Bucket:          s.storageCfg.Bucket,
		Endpoint:        s.dialect.Endpoint(s.storageCfg.Bucket, s.storageCfg.Region),
		Policy:          encoded,
		Signature:       policy.Sign(s.storageCfg.SecretKey, encoded),
	}
	if !out.Expiration.IsZero() {
		exp := out.Expiration
		cred.Expiration = &exp
	}

	s.logger.Info("credentialService.Issue: credential issued",
		zap.String("access_key_id", cred.AccessKeyID),
		zap.String("prefix", prefix),
		zap.Duration("latency", time.Since(start)),
	)
	return cred, nil
}

func (s *credentialService) Get(ctx context.Context, scope CredentialScope) (*domain.Credential, error) {
	prefix, err := objectkey.CleanPrefix(scope.Prefix)
	if err != nil {
		return nil, err
	}
	if prefix != "" {
		return s.issue(ctx, prefix)
	}

	if cred, ok := s.cache.Get(); ok {
		s.observer.CredentialCacheLookup(true)
		return &cred, nil
	}
	s.observer.CredentialCacheLookup(false)

	// Concurrent misses share one provider call. The flight must not die with
	// whichever request happened to start it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do("default", func() (interface{}, error) {
		issuedAt := s.cache.Now()
		cred, err := s.issue(flightCtx, "")
		if err != nil {
			return nil, err
		}
		s.cache.Put(*cred, issuedAt)
		return *cred, nil
	})
	if err != nil {
		return nil, err
	}
	cred := v.(domain.Credential)
	return &cred, nil
}

func (s *credentialService) Cached() (*domain.Credential, bool) {
	cred, ok := s.cache.Get()
	if !ok {
		return nil, false
	}
	return &cred, true
}

func (s *credentialService) Invalidate() {
	s.cache.Invalidate()
}

func (s *credentialService) CachedUntil() (time.Time, bool) {
	return s.cache.ExpiresAt()
}
