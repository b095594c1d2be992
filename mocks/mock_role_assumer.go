package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ossgate/internal/port"
)

// MockRoleAssumer is a mock implementation of port.RoleAssumer.
type MockRoleAssumer struct {
	mock.Mock
}

func (m *MockRoleAssumer) AssumeRole(ctx context.Context, input port.AssumeRoleInput) (*port.AssumeRoleOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.AssumeRoleOutput), args.Error(1)
}
