package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"ossgate/internal/domain"
	"ossgate/internal/port"
)

// MockObjectStorage is a mock implementation of port.ObjectStorage.
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Put(ctx context.Context, input port.PutInput) (*port.PutOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.PutOutput), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStorage) PresignGet(ctx context.Context, cred domain.Credential, key string, expires time.Duration) (string, error) {
	args := m.Called(ctx, cred, key, expires)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) StaticCredential() domain.Credential {
	args := m.Called()
	return args.Get(0).(domain.Credential)
}
