// Package policy builds the session policy handed to role assumption and
// signs it for browser-direct POST uploads.
package policy

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // the provider's POST policy signature is defined as HMAC-SHA1
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Dialect selects the provider-specific action, resource and endpoint names.
type Dialect string

const (
	DialectOSS Dialect = "oss"
	DialectS3  Dialect = "s3"
)

// Statement is a single allow/deny rule of a policy document.
type Statement struct {
	Action   []string `json:"Action"`
	Effect   string   `json:"Effect"`
	Resource []string `json:"Resource"`
}

// Document is a provider policy document. Field order matches what the
// provider documents so encoded policies are stable.
type Document struct {
	Statement []Statement `json:"Statement"`
	Version   string      `json:"Version"`
}

// Valid reports whether d names a supported provider.
func (d Dialect) Valid() bool {
	return d == DialectOSS || d == DialectS3
}

// UploadPolicy limits a session to writing (and optionally reading) objects
// under prefix in bucket. An empty prefix covers the whole bucket.
func (d Dialect) UploadPolicy(bucket, prefix string, allowRead bool) Document {
	switch d {
	case DialectS3:
		actions := []string{"s3:PutObject"}
		if allowRead {
			actions = append(actions, "s3:GetObject")
		}
		return Document{
			Statement: []Statement{{
				Action:   actions,
				Effect:   "Allow",
				Resource: []string{fmt.Sprintf("arn:aws:s3:::%s/%s*", bucket, prefix)},
			}},
			Version: "2012-10-17",
		}
	default:
		actions := []string{"oss:PutObject"}
		if allowRead {
			actions = append(actions, "oss:GetObject")
		}
		return Document{
			Statement: []Statement{{
				Action:   actions,
				Effect:   "Allow",
				Resource: []string{fmt.Sprintf("acs:oss:*:*:%s/%s*", bucket, prefix)},
			}},
			Version: "1",
		}
	}
}

// Endpoint returns the virtual-hosted bucket host clients upload to.
func (d Dialect) Endpoint(bucket, region string) string {
	if d == DialectS3 {
		return fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket, region)
	}
	return fmt.Sprintf("%s.%s.aliyuncs.com", bucket, region)
}

// Encode returns the JSON form of the document and its base64 encoding.
func (doc Document) Encode() (raw, encoded string, err error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", "", fmt.Errorf("encoding policy: %w", err)
	}
	return string(b), base64.StdEncoding.EncodeToString(b), nil
}

// Sign computes base64(HMAC-SHA1(secret, encodedPolicy)).
func Sign(secret, encodedPolicy string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(encodedPolicy))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is the signature of encodedPolicy under secret.
func Verify(secret, encodedPolicy, signature string) bool {
	want, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(encodedPolicy))
	return hmac.Equal(mac.Sum(nil), want)
}
