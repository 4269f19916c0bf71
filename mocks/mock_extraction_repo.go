package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"contractocr/internal/domain"
)

// MockExtractionRepo is a mock implementation of port.ExtractionRepository.
type MockExtractionRepo struct {
	mock.Mock
}

func (m *MockExtractionRepo) Create(ctx context.Context, e *domain.Extraction) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExtractionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extraction), args.Error(1)
}

func (m *MockExtractionRepo) List(ctx context.Context, offset, limit int) ([]domain.Extraction, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Extraction), args.Int(1), args.Error(2)
}
