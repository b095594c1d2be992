package oss

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"ossgate/internal/config"
	"ossgate/internal/domain"
	"ossgate/internal/port"
)

type ossClient struct {
	cfg      *config.StorageConfig
	endpoint string
	bucket   *oss.Bucket

	mu         sync.Mutex
	tempKeyID  string
	tempBucket *oss.Bucket
}

// Endpoint returns the service endpoint for cfg, derived from the region
// when no explicit endpoint is configured.
func Endpoint(cfg *config.StorageConfig) string {
	if cfg.Endpoint != "" {
		return cfg.Endpoint
	}
	return fmt.Sprintf("https://%s.aliyuncs.com", cfg.Region)
}

// NewOSSClient creates an Alibaba Cloud OSS-backed ObjectStorage
// implementation that writes with the server's long-lived key.
func NewOSSClient(cfg *config.StorageConfig) (port.ObjectStorage, error) {
	c := &ossClient{cfg: cfg, endpoint: Endpoint(cfg)}

	bucket, err := c.openBucket(cfg.AccessKey, cfg.SecretKey, "")
	if err != nil {
		return nil, err
	}
	c.bucket = bucket
	return c, nil
}

func (c *ossClient) openBucket(keyID, secret, token string) (*oss.Bucket, error) {
	opts := []oss.ClientOption{oss.AuthVersion(oss.AuthV1)}
	if token != "" {
		opts = append(opts, oss.SecurityToken(token))
	}
	if c.cfg.RequestTimeout > 0 {
		secs := int64(c.cfg.RequestTimeout / time.Second)
		if secs < 1 {
			secs = 1
		}
		opts = append(opts, oss.Timeout(secs, secs))
	}

	client, err := oss.New(c.endpoint, keyID, secret, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating oss client: %w", err)
	}
	bucket, err := client.Bucket(c.cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("opening oss bucket %s: %w", c.cfg.Bucket, err)
	}
	return bucket, nil
}

func (c *ossClient) Put(ctx context.Context, input port.PutInput) (*port.PutOutput, error) {
	err := c.bucket.PutObject(input.Key, input.Body,
		oss.ContentType(input.ContentType),
		oss.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("oss put: %w", err)
	}

	host := strings.TrimPrefix(strings.TrimPrefix(c.endpoint, "https://"), "http://")
	return &port.PutOutput{
		Location: fmt.Sprintf("https://%s.%s/%s", c.cfg.Bucket, host, input.Key),
	}, nil
}

func (c *ossClient) Delete(ctx context.Context, key string) error {
	if err := c.bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("oss delete: %w", err)
	}
	return nil
}

func (c *ossClient) PresignGet(_ context.Context, cred domain.Credential, key string, expires time.Duration) (string, error) {
	bucket, err := c.bucketFor(cred)
	if err != nil {
		return "", err
	}

	signed, err := bucket.SignURL(key, oss.HTTPGet, int64(expires/time.Second))
	if err != nil {
		return "", fmt.Errorf("oss sign url: %w", err)
	}
	return signed, nil
}

func (c *ossClient) StaticCredential() domain.Credential {
	return domain.Credential{
		AccessKeyID:     c.cfg.AccessKey,
		AccessKeySecret: c.cfg.SecretKey,
		Region:          c.cfg.Region,
		Bucket:          c.cfg.Bucket,
	}
}

// bucketFor returns a bucket handle authenticated as cred. The handle for the
// most recent temporary credential is kept until the next rotation.
func (c *ossClient) bucketFor(cred domain.Credential) (*oss.Bucket, error) {
	if cred.SecurityToken == "" && cred.AccessKeyID == c.cfg.AccessKey {
		return c.bucket, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tempBucket != nil && c.tempKeyID == cred.AccessKeyID {
		return c.tempBucket, nil
	}

	bucket, err := c.openBucket(cred.AccessKeyID, cred.AccessKeySecret, cred.SecurityToken)
	if err != nil {
		return nil, err
	}
	c.tempKeyID = cred.AccessKeyID
	c.tempBucket = bucket
	return bucket, nil
}
