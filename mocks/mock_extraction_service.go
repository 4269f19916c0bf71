package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"contractocr/internal/domain"
	"contractocr/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) ExtractFromUpload(ctx context.Context, input service.ExtractUploadInput) (*domain.Extraction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extraction), args.Error(1)
}

func (m *MockExtractionService) ExtractFromText(ctx context.Context, rawText string) (*domain.Extraction, error) {
	args := m.Called(ctx, rawText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extraction), args.Error(1)
}

func (m *MockExtractionService) Reprocess(ctx context.Context, extractionID uuid.UUID) (*domain.Extraction, error) {
	args := m.Called(ctx, extractionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extraction), args.Error(1)
}

func (m *MockExtractionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Extraction), args.Error(1)
}

func (m *MockExtractionService) List(ctx context.Context, offset, limit int) ([]domain.Extraction, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Extraction), args.Int(1), args.Error(2)
}

func (m *MockExtractionService) GetFileURL(ctx context.Context, extractionID uuid.UUID) (string, error) {
	args := m.Called(ctx, extractionID)
	return args.String(0), args.Error(1)
}

func (m *MockExtractionService) DeleteFile(ctx context.Context, extractionID uuid.UUID) error {
	args := m.Called(ctx, extractionID)
	return args.Error(0)
}
