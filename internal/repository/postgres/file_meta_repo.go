package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"contractocr/internal/domain"
	"contractocr/internal/port"
)

type fileMetaRepo struct {
	db *sqlx.DB
}

// NewFileMetaRepo creates a new PostgreSQL-backed FileMetaRepository.
func NewFileMetaRepo(db *sqlx.DB) port.FileMetaRepository {
	return &fileMetaRepo{db: db}
}

func (r *fileMetaRepo) Create(ctx context.Context, meta *domain.FileMeta) error {
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	query := `INSERT INTO file_metadata
		(id, file_name, original_name, file_type, file_size,
		 s3_bucket, s3_key, content_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		meta.ID, meta.FileName, meta.OriginalName, meta.FileType, meta.FileSize,
		meta.S3Bucket, meta.S3Key, meta.ContentType, meta.Status,
		meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.Create: %w", err)
	}
	return nil
}

func (r *fileMetaRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FileMeta, error) {
	var meta domain.FileMeta
	err := r.db.GetContext(ctx, &meta, "SELECT * FROM file_metadata WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fileMetaRepo.GetByID: %w", err)
	}
	return &meta, nil
}

func (r *fileMetaRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE file_metadata SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
