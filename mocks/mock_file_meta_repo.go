package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"contractocr/internal/domain"
)

// MockFileMetaRepo is a mock implementation of port.FileMetaRepository.
type MockFileMetaRepo struct {
	mock.Mock
}

func (m *MockFileMetaRepo) Create(ctx context.Context, meta *domain.FileMeta) error {
	args := m.Called(ctx, meta)
	return args.Error(0)
}

func (m *MockFileMetaRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FileMeta, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FileMeta), args.Error(1)
}

func (m *MockFileMetaRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
