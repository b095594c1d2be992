package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"ossgate/internal/port"
)

// assumeRoleAPI is the subset of *sts.Client the assumer calls.
type assumeRoleAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

type stsClient struct {
	api assumeRoleAPI
}

// NewSTSClient creates an AWS STS-backed RoleAssumer. endpoint overrides the
// regional STS endpoint when set.
func NewSTSClient(awsCfg aws.Config, endpoint string) port.RoleAssumer {
	var opts []func(*sts.Options)
	if endpoint != "" {
		opts = append(opts, func(o *sts.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	return &stsClient{api: sts.NewFromConfig(awsCfg, opts...)}
}

func (c *stsClient) AssumeRole(ctx context.Context, input port.AssumeRoleInput) (*port.AssumeRoleOutput, error) {
	params := &sts.AssumeRoleInput{
		RoleArn:         aws.String(input.RoleARN),
		RoleSessionName: aws.String(input.SessionName),
		DurationSeconds: aws.Int32(int32(input.Duration.Seconds())),
	}
	if input.Policy != "" {
		params.Policy = aws.String(input.Policy)
	}

	out, err := c.api.AssumeRole(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("sts assume role: %w", err)
	}
	if out.Credentials == nil {
		return nil, errors.New("sts assume role: response carried no credentials")
	}

	result := &port.AssumeRoleOutput{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		AccessKeySecret: aws.ToString(out.Credentials.SecretAccessKey),
		SecurityToken:   aws.ToString(out.Credentials.SessionToken),
	}
	if out.Credentials.Expiration != nil {
		result.Expiration = *out.Credentials.Expiration
	}
	return result, nil
}
