package oss

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/aliyun/alibaba-cloud-sdk-go/services/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ossgate/internal/config"
	"ossgate/internal/domain"
	"ossgate/internal/port"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Provider:  "oss",
		Region:    "oss-cn-hangzhou",
		Bucket:    "house-assets",
		AccessKey: "LTAI-long-lived",
		SecretKey: "long-lived-secret",
	}
}

func TestEndpoint(t *testing.T) {
	cfg := testStorageConfig()
	assert.Equal(t, "https://oss-cn-hangzhou.aliyuncs.com", Endpoint(cfg))

	cfg.Endpoint = "https://oss-cn-hangzhou-internal.aliyuncs.com"
	assert.Equal(t, "https://oss-cn-hangzhou-internal.aliyuncs.com", Endpoint(cfg))
}

func TestSTSRegionID(t *testing.T) {
	assert.Equal(t, "cn-hangzhou", STSRegionID("oss-cn-hangzhou"))
	assert.Equal(t, "cn-shanghai", STSRegionID("cn-shanghai"))
}

func TestPresignGet_StaticCredential(t *testing.T) {
	client, err := NewOSSClient(testStorageConfig())
	require.NoError(t, err)

	signed, err := client.PresignGet(context.Background(), client.StaticCredential(), "avatars/10001_1.jpg", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "house-assets.oss-cn-hangzhou.aliyuncs.com", u.Host)
	assert.Equal(t, "/avatars/10001_1.jpg", u.Path)
	assert.Equal(t, "LTAI-long-lived", u.Query().Get("OSSAccessKeyId"))
	assert.NotEmpty(t, u.Query().Get("Signature"))
	assert.Empty(t, u.Query().Get("security-token"))
}

func TestPresignGet_TemporaryCredential(t *testing.T) {
	client, err := NewOSSClient(testStorageConfig())
	require.NoError(t, err)
	cred := domain.Credential{AccessKeyID: "STS.temp", AccessKeySecret: "temp-secret", SecurityToken: "sts-token"}

	signed, err := client.PresignGet(context.Background(), cred, "real-estate/10001/1_abc.png", 10*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "STS.temp", u.Query().Get("OSSAccessKeyId"))
	assert.Equal(t, "sts-token", u.Query().Get("security-token"))
	assert.NotContains(t, signed, "temp-secret")
	assert.NotContains(t, signed, "long-lived-secret")
}

func TestPresignGet_TwoSigningsReferenceSameObject(t *testing.T) {
	client, err := NewOSSClient(testStorageConfig())
	require.NoError(t, err)

	first, err := client.PresignGet(context.Background(), client.StaticCredential(), "never/uploaded.png", time.Minute)
	require.NoError(t, err)
	second, err := client.PresignGet(context.Background(), client.StaticCredential(), "never/uploaded.png", 2*time.Minute)
	require.NoError(t, err)

	u1, _ := url.Parse(first)
	u2, _ := url.Parse(second)
	assert.Equal(t, u1.Host, u2.Host)
	assert.Equal(t, u1.Path, u2.Path)
}

func TestBucketFor_ReusesHandlePerAccessKey(t *testing.T) {
	raw, err := NewOSSClient(testStorageConfig())
	require.NoError(t, err)
	client := raw.(*ossClient)

	a := domain.Credential{AccessKeyID: "STS.a", AccessKeySecret: "s", SecurityToken: "t"}
	b := domain.Credential{AccessKeyID: "STS.b", AccessKeySecret: "s", SecurityToken: "t"}

	first, err := client.bucketFor(a)
	require.NoError(t, err)
	again, err := client.bucketFor(a)
	require.NoError(t, err)
	rotated, err := client.bucketFor(b)
	require.NoError(t, err)

	assert.Same(t, first, again)
	assert.NotSame(t, first, rotated)

	static, err := client.bucketFor(client.StaticCredential())
	require.NoError(t, err)
	assert.Same(t, client.bucket, static)
}

type fakeSTS struct {
	got   *sts.AssumeRoleRequest
	resp  *sts.AssumeRoleResponse
	err   error
	block chan struct{}
}

func (f *fakeSTS) AssumeRole(req *sts.AssumeRoleRequest) (*sts.AssumeRoleResponse, error) {
	f.got = req
	if f.block != nil {
		<-f.block
	}
	return f.resp, f.err
}

func TestSTSClient_AssumeRole(t *testing.T) {
	fake := &fakeSTS{resp: &sts.AssumeRoleResponse{Credentials: sts.Credentials{
		AccessKeyId:     "STS.NUxyz",
		AccessKeySecret: "temp-secret",
		SecurityToken:   "CAIS-token",
		Expiration:      "2025-08-05T11:00:00Z",
	}}}
	client := &stsClient{api: fake, domain: "sts.cn-hangzhou.aliyuncs.com"}

	out, err := client.AssumeRole(context.Background(), port.AssumeRoleInput{
		RoleARN:     "acs:ram::1234567890:role/oss-uploader",
		SessionName: "oss-upload-session",
		Policy:      `{"Version":"1"}`,
		Duration:    time.Hour,
	})

	require.NoError(t, err)
	assert.Equal(t, "STS.NUxyz", out.AccessKeyID)
	assert.Equal(t, "temp-secret", out.AccessKeySecret)
	assert.Equal(t, "CAIS-token", out.SecurityToken)
	assert.Equal(t, time.Date(2025, 8, 5, 11, 0, 0, 0, time.UTC), out.Expiration)

	assert.Equal(t, "acs:ram::1234567890:role/oss-uploader", fake.got.RoleArn)
	assert.Equal(t, "oss-upload-session", fake.got.RoleSessionName)
	assert.Equal(t, `{"Version":"1"}`, fake.got.Policy)
	assert.Equal(t, "3600", string(fake.got.DurationSeconds))
	assert.Equal(t, "https", fake.got.Scheme)
	assert.Equal(t, "sts.cn-hangzhou.aliyuncs.com", fake.got.Domain)
}

func TestSTSClient_AssumeRole_ProviderError(t *testing.T) {
	client := &stsClient{api: &fakeSTS{err: errors.New("NoPermission")}}

	_, err := client.AssumeRole(context.Background(), port.AssumeRoleInput{Duration: time.Hour})

	assert.ErrorContains(t, err, "NoPermission")
}

func TestSTSClient_AssumeRole_EmptyResponse(t *testing.T) {
	client := &stsClient{api: &fakeSTS{resp: &sts.AssumeRoleResponse{}}}

	_, err := client.AssumeRole(context.Background(), port.AssumeRoleInput{Duration: time.Hour})

	assert.Error(t, err)
}

func TestSTSClient_AssumeRole_ContextDeadline(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	client := &stsClient{api: &fakeSTS{block: block}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.AssumeRole(ctx, port.AssumeRoleInput{Duration: time.Hour})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
