package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ossgate/internal/domain"
	"ossgate/internal/service"
)

// MockUploadService is a mock implementation of service.UploadService.
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) UploadAvatar(ctx context.Context, ownerID string, file service.UploadFile) (*domain.UploadedObject, error) {
	args := m.Called(ctx, ownerID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadedObject), args.Error(1)
}

func (m *MockUploadService) UploadPropertyImages(ctx context.Context, ownerID string, files []service.UploadFile, opts service.PropertyImageOptions) ([]domain.PropertyImage, error) {
	args := m.Called(ctx, ownerID, files, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PropertyImage), args.Error(1)
}
