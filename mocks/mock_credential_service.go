package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"ossgate/internal/domain"
	"ossgate/internal/service"
)

// MockCredentialService is a mock implementation of service.CredentialService.
type MockCredentialService struct {
	mock.Mock
}

func (m *MockCredentialService) Issue(ctx context.Context, scope service.CredentialScope) (*domain.Credential, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}

func (m *MockCredentialService) Get(ctx context.Context, scope service.CredentialScope) (*domain.Credential, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}

func (m *MockCredentialService) Cached() (*domain.Credential, bool) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.Credential), args.Bool(1)
}

func (m *MockCredentialService) Invalidate() {
	m.Called()
}

func (m *MockCredentialService) CachedUntil() (time.Time, bool) {
	args := m.Called()
	return args.Get(0).(time.Time), args.Bool(1)
}
