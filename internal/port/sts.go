package port

import (
	"context"
	"time"
)

// AssumeRoleInput carries the parameters of a role-assumption call.
type AssumeRoleInput struct {
	RoleARN     string
	SessionName string
	Policy      string
	Duration    time.Duration
}

// AssumeRoleOutput is the temporary key material returned by the provider.
type AssumeRoleOutput struct {
	AccessKeyID     string
	AccessKeySecret string
	SecurityToken   string
	Expiration      time.Time
}

// RoleAssumer exchanges the server's long-lived key for a temporary,
// policy-restricted credential.
type RoleAssumer interface {
	AssumeRole(ctx context.Context, input AssumeRoleInput) (*AssumeRoleOutput, error)
}
