package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockURLSigner is a mock implementation of service.URLSigner.
type MockURLSigner struct {
	mock.Mock
}

func (m *MockURLSigner) SignURL(ctx context.Context, ossPath string, expires time.Duration) (string, error) {
	args := m.Called(ctx, ossPath, expires)
	return args.String(0), args.Error(1)
}
