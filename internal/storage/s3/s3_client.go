package s3

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"ossgate/internal/config"
	"ossgate/internal/domain"
	"ossgate/internal/port"
)

// MaxPresignExpiry is the longest lifetime SigV4 accepts for a presigned URL.
const MaxPresignExpiry = 7 * 24 * time.Hour

type s3Client struct {
	awsCfg    aws.Config
	s3Opts    []func(*s3.Options)
	client    *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader
	cfg       *config.StorageConfig

	mu         sync.Mutex
	tempKeyID  string
	tempSigner *s3.PresignClient
}

// LoadAWSConfig builds the SDK configuration shared by the S3 and STS clients.
// The long-lived key pair from cfg takes precedence over the default chain.
func LoadAWSConfig(ctx context.Context, cfg *config.StorageConfig) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading aws config: %w", err)
	}
	return awsCfg, nil
}

// NewS3Client creates a new S3-backed ObjectStorage implementation. An
// endpoint switches to path-style addressing for MinIO and other
// S3-compatible stores.
func NewS3Client(awsCfg aws.Config, cfg *config.StorageConfig) port.ObjectStorage {
	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &s3Client{
		awsCfg:    awsCfg,
		s3Opts:    s3Opts,
		client:    client,
		presigner: s3.NewPresignClient(client),
		uploader:  manager.NewUploader(client),
		cfg:       cfg,
	}
}

func (c *s3Client) Put(ctx context.Context, input port.PutInput) (*port.PutOutput, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	result, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(input.Key),
		Body:        input.Body,
		ContentType: aws.String(input.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	etag := ""
	if result.ETag != nil {
		etag = *result.ETag
	}

	return &port.PutOutput{
		Location: result.Location,
		ETag:     etag,
	}, nil
}

func (c *s3Client) Delete(ctx context.Context, key string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}

func (c *s3Client) PresignGet(ctx context.Context, cred domain.Credential, key string, expires time.Duration) (string, error) {
	if expires > MaxPresignExpiry {
		expires = MaxPresignExpiry
	}

	result, err := c.presignerFor(cred).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("s3 presign: %w", err)
	}
	return result.URL, nil
}

func (c *s3Client) StaticCredential() domain.Credential {
	return domain.Credential{
		AccessKeyID:     c.cfg.AccessKey,
		AccessKeySecret: c.cfg.SecretKey,
		Region:          c.cfg.Region,
		Bucket:          c.cfg.Bucket,
	}
}

// presignerFor returns a presign client bound to cred. The client for the
// most recent temporary credential is kept until the next rotation.
func (c *s3Client) presignerFor(cred domain.Credential) *s3.PresignClient {
	if cred.SecurityToken == "" && cred.AccessKeyID == c.cfg.AccessKey {
		return c.presigner
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tempSigner != nil && c.tempKeyID == cred.AccessKeyID {
		return c.tempSigner
	}

	awsCfg := c.awsCfg.Copy()
	awsCfg.Credentials = credentials.NewStaticCredentialsProvider(cred.AccessKeyID, cred.AccessKeySecret, cred.SecurityToken)
	c.tempKeyID = cred.AccessKeyID
	c.tempSigner = s3.NewPresignClient(s3.NewFromConfig(awsCfg, c.s3Opts...))
	return c.tempSigner
}

func (c *s3Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.RequestTimeout)
}
