package oss

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/sts"

	"ossgate/internal/config"
	"ossgate/internal/port"
)

// assumeRoleAPI is the subset of *sts.Client the assumer calls.
type assumeRoleAPI interface {
	AssumeRole(request *sts.AssumeRoleRequest) (*sts.AssumeRoleResponse, error)
}

type stsClient struct {
	api    assumeRoleAPI
	domain string
}

// STSRegionID maps an OSS region ("oss-cn-hangzhou") to the region id the
// STS API expects ("cn-hangzhou").
func STSRegionID(region string) string {
	return strings.TrimPrefix(region, "oss-")
}

// NewSTSClient creates an Alibaba Cloud STS-backed RoleAssumer signed with
// the long-lived key from cfg. endpoint overrides the STS domain when set.
func NewSTSClient(cfg *config.StorageConfig, endpoint string, timeout time.Duration) (port.RoleAssumer, error) {
	client, err := sts.NewClientWithAccessKey(STSRegionID(cfg.Region), cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("creating sts client: %w", err)
	}
	if timeout > 0 {
		client.SetConnectTimeout(timeout)
		client.SetReadTimeout(timeout)
	}
	return &stsClient{api: client, domain: endpoint}, nil
}

type assumeRoleResult struct {
	resp *sts.AssumeRoleResponse
	err  error
}

func (c *stsClient) AssumeRole(ctx context.Context, input port.AssumeRoleInput) (*port.AssumeRoleOutput, error) {
	req := sts.CreateAssumeRoleRequest()
	req.Scheme = "https"
	req.RoleArn = input.RoleARN
	req.RoleSessionName = input.SessionName
	req.Policy = input.Policy
	req.DurationSeconds = requests.NewInteger(int(input.Duration / time.Second))
	if c.domain != "" {
		req.Domain = c.domain
	}

	// The SDK call takes no context; abandon it when ctx ends.
	done := make(chan assumeRoleResult, 1)
	go func() {
		resp, err := c.api.AssumeRole(req)
		done <- assumeRoleResult{resp: resp, err: err}
	}()

	var res assumeRoleResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("sts assume role: %w", ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("sts assume role: %w", res.err)
	}
	if res.resp == nil || res.resp.Credentials.AccessKeyId == "" {
		return nil, errors.New("sts assume role: response carried no credentials")
	}

	creds := res.resp.Credentials
	out := &port.AssumeRoleOutput{
		AccessKeyID:     creds.AccessKeyId,
		AccessKeySecret: creds.AccessKeySecret,
		SecurityToken:   creds.SecurityToken,
	}
	if creds.Expiration != "" {
		exp, err := time.Parse(time.RFC3339, creds.Expiration)
		if err != nil {
			return nil, fmt.Errorf("sts assume role: parsing expiration %q: %w", creds.Expiration, err)
		}
		out.Expiration = exp
	}
	return out, nil
}
