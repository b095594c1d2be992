package domain

import "time"

// Credential is a time-scoped authorization to operate on the storage bucket.
// Policy and Signature are either both set or both empty.
type Credential struct {
	AccessKeyID     string     `json:"accessKeyId"`
	AccessKeySecret string     `json:"accessKeySecret,omitempty"`
	SecurityToken   string     `json:"securityToken"`
	Region          string     `json:"region"`
	Bucket          string     `json:"bucket"`
	Endpoint        string     `json:"endpoint"`
	Policy          string     `json:"policy,omitempty"`
	Signature       string     `json:"signature,omitempty"`
	Expiration      *time.Time `json:"expiration,omitempty"`
}

// HasPolicy reports whether the credential carries a signed browser-upload policy.
func (c Credential) HasPolicy() bool {
	return c.Policy != "" && c.Signature != ""
}

// Public returns a copy safe to hand to a browser-direct uploader: the
// temporary secret is stripped.
func (c Credential) Public() Credential {
	c.AccessKeySecret = ""
	return c
}

// UploadedObject is a file persisted to the bucket. Only OSSPath is durable;
// URL is a signed link that must be regenerated once it expires.
type UploadedObject struct {
	ID       string `json:"id"`
	OSSPath  string `json:"oss_path"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// PropertyImage is an uploaded listing photo with its position in the submission.
type PropertyImage struct {
	UploadedObject
	IsPrimary bool `json:"is_primary"`
	SortOrder int  `json:"sort_order"`
}
