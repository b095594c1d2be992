package policy_test

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ossgate/internal/policy"
)

func TestUploadPolicy_OSS_WriteOnly(t *testing.T) {
	doc := policy.DialectOSS.UploadPolicy("estate-bucket", "", false)

	require.Len(t, doc.Statement, 1)
	assert.Equal(t, "1", doc.Version)
	assert.Equal(t, []string{"oss:PutObject"}, doc.Statement[0].Action)
	assert.Equal(t, "Allow", doc.Statement[0].Effect)
	assert.Equal(t, []string{"acs:oss:*:*:estate-bucket/*"}, doc.Statement[0].Resource)
}

func TestUploadPolicy_OSS_ReadAndPrefix(t *testing.T) {
	doc := policy.DialectOSS.UploadPolicy("estate-bucket", "real-estate/", true)

	assert.Equal(t, []string{"oss:PutObject", "oss:GetObject"}, doc.Statement[0].Action)
	assert.Equal(t, []string{"acs:oss:*:*:estate-bucket/real-estate/*"}, doc.Statement[0].Resource)
}

func TestUploadPolicy_S3(t *testing.T) {
	doc := policy.DialectS3.UploadPolicy("estate-bucket", "avatars/", true)

	assert.Equal(t, "2012-10-17", doc.Version)
	assert.Equal(t, []string{"s3:PutObject", "s3:GetObject"}, doc.Statement[0].Action)
	assert.Equal(t, []string{"arn:aws:s3:::estate-bucket/avatars/*"}, doc.Statement[0].Resource)
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "estate-bucket.oss-cn-hangzhou.aliyuncs.com",
		policy.DialectOSS.Endpoint("estate-bucket", "oss-cn-hangzhou"))
	assert.Equal(t, "estate-bucket.s3.us-east-1.amazonaws.com",
		policy.DialectS3.Endpoint("estate-bucket", "us-east-1"))
}

func TestDialect_Valid(t *testing.T) {
	assert.True(t, policy.DialectOSS.Valid())
	assert.True(t, policy.DialectS3.Valid())
	assert.False(t, policy.Dialect("gcs").Valid())
}

func TestEncode_FieldOrderAndBase64(t *testing.T) {
	doc := policy.DialectOSS.UploadPolicy("b", "", false)

	raw, encoded, err := doc.Encode()
	require.NoError(t, err)
	assert.Equal(t,
		`{"Statement":[{"Action":["oss:PutObject"],"Effect":"Allow","Resource":["acs:oss:*:*:b/*"]}],"Version":"1"}`,
		raw)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	var back policy.Document
	require.NoError(t, json.Unmarshal(decoded, &back))
	assert.Equal(t, doc, back)
}

func TestSign_IsHMACSHA1OfEncodedPolicy(t *testing.T) {
	secrets := []string{"secret", "another-long-lived-secret", ""}
	for _, secret := range secrets {
		_, encoded, err := policy.DialectOSS.UploadPolicy("bucket", "p/", true).Encode()
		require.NoError(t, err)

		mac := hmac.New(sha1.New, []byte(secret))
		mac.Write([]byte(encoded))
		want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

		got := policy.Sign(secret, encoded)
		assert.Equal(t, want, got)
		assert.True(t, policy.Verify(secret, encoded, got))
	}
}

func TestVerify_RejectsWrongSecretAndGarbage(t *testing.T) {
	sig := policy.Sign("right", "cG9saWN5")

	assert.False(t, policy.Verify("wrong", "cG9saWN5", sig))
	assert.False(t, policy.Verify("right", "b3RoZXI=", sig))
	assert.False(t, policy.Verify("right", "cG9saWN5", "%%%not-base64"))
}
