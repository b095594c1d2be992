package s3

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ossgate/internal/config"
	"ossgate/internal/domain"
	"ossgate/internal/port"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Provider:  "s3",
		Region:    "us-east-1",
		Bucket:    "house-assets",
		Endpoint:  "http://localhost:9000",
		AccessKey: "AKIALONGLIVED",
		SecretKey: "long-lived-secret",
	}
}

func newTestClient(t *testing.T) port.ObjectStorage {
	t.Helper()
	cfg := testStorageConfig()
	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	require.NoError(t, err)
	return NewS3Client(awsCfg, cfg)
}

func TestPresignGet_StaticCredential(t *testing.T) {
	client := newTestClient(t)

	signed, err := client.PresignGet(context.Background(), client.StaticCredential(), "avatars/10001_1.jpg", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "/house-assets/avatars/10001_1.jpg", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.True(t, strings.HasPrefix(u.Query().Get("X-Amz-Credential"), "AKIALONGLIVED/"))
	assert.Empty(t, u.Query().Get("X-Amz-Security-Token"))
}

func TestPresignGet_TemporaryCredential(t *testing.T) {
	client := newTestClient(t)
	cred := domain.Credential{AccessKeyID: "ASIATEMP", AccessKeySecret: "temp-secret", SecurityToken: "session-token"}

	signed, err := client.PresignGet(context.Background(), cred, "real-estate/10001/1_abc.png", 10*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.Query().Get("X-Amz-Credential"), "ASIATEMP/"))
	assert.Equal(t, "session-token", u.Query().Get("X-Amz-Security-Token"))
}

func TestPresignGet_ClampsToSevenDays(t *testing.T) {
	client := newTestClient(t)

	signed, err := client.PresignGet(context.Background(), client.StaticCredential(), "a.png", 30*24*time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "604800", u.Query().Get("X-Amz-Expires"))
}

func TestPresignGet_SamePathSameObject(t *testing.T) {
	client := newTestClient(t)

	first, err := client.PresignGet(context.Background(), client.StaticCredential(), "never/uploaded.png", time.Minute)
	require.NoError(t, err)
	second, err := client.PresignGet(context.Background(), client.StaticCredential(), "never/uploaded.png", time.Minute)
	require.NoError(t, err)

	u1, _ := url.Parse(first)
	u2, _ := url.Parse(second)
	assert.Equal(t, u1.Host, u2.Host)
	assert.Equal(t, u1.Path, u2.Path)
}

func TestStaticCredential(t *testing.T) {
	client := newTestClient(t)

	cred := client.StaticCredential()

	assert.Equal(t, "AKIALONGLIVED", cred.AccessKeyID)
	assert.Equal(t, "house-assets", cred.Bucket)
	assert.Empty(t, cred.SecurityToken)
}

type fakeSTS struct {
	got *sts.AssumeRoleInput
	out *sts.AssumeRoleOutput
	err error
}

func (f *fakeSTS) AssumeRole(_ context.Context, params *sts.AssumeRoleInput, _ ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	f.got = params
	return f.out, f.err
}

func TestSTSClient_AssumeRole(t *testing.T) {
	exp := time.Date(2025, 8, 5, 11, 0, 0, 0, time.UTC)
	fake := &fakeSTS{out: &sts.AssumeRoleOutput{Credentials: &ststypes.Credentials{
		AccessKeyId:     aws.String("ASIATEMP"),
		SecretAccessKey: aws.String("temp-secret"),
		SessionToken:    aws.String("session-token"),
		Expiration:      aws.Time(exp),
	}}}
	client := &stsClient{api: fake}

	out, err := client.AssumeRole(context.Background(), port.AssumeRoleInput{
		RoleARN:     "arn:aws:iam::123456789012:role/uploader",
		SessionName: "oss-upload-session",
		Policy:      `{"Version":"2012-10-17"}`,
		Duration:    time.Hour,
	})

	require.NoError(t, err)
	assert.Equal(t, "ASIATEMP", out.AccessKeyID)
	assert.Equal(t, "temp-secret", out.AccessKeySecret)
	assert.Equal(t, "session-token", out.SecurityToken)
	assert.Equal(t, exp, out.Expiration)
	assert.Equal(t, int32(3600), aws.ToInt32(fake.got.DurationSeconds))
	assert.Equal(t, `{"Version":"2012-10-17"}`, aws.ToString(fake.got.Policy))
}

func TestSTSClient_AssumeRole_Error(t *testing.T) {
	client := &stsClient{api: &fakeSTS{err: errors.New("AccessDenied")}}

	_, err := client.AssumeRole(context.Background(), port.AssumeRoleInput{Duration: time.Hour})

	assert.ErrorContains(t, err, "AccessDenied")
}

func TestSTSClient_AssumeRole_NoCredentials(t *testing.T) {
	client := &stsClient{api: &fakeSTS{out: &sts.AssumeRoleOutput{}}}

	_, err := client.AssumeRole(context.Background(), port.AssumeRoleInput{Duration: time.Hour})

	assert.Error(t, err)
}
