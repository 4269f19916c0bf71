package port

import (
	"context"

	"github.com/google/uuid"

	"contractocr/internal/domain"
)

// ExtractionRepository persists extraction records.
type ExtractionRepository interface {
	Create(ctx context.Context, e *domain.Extraction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error)
	List(ctx context.Context, offset, limit int) ([]domain.Extraction, int, error)
}

// FileMetaRepository persists metadata for uploaded contract files.
type FileMetaRepository interface {
	Create(ctx context.Context, meta *domain.FileMeta) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FileMeta, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error
}
