package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"contractocr/internal/config"
	"contractocr/internal/domain"
	"contractocr/internal/extract"
	"contractocr/internal/port"
)

// ExtractUploadInput is the DTO for contract upload requests.
type ExtractUploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// ExtractionService defines the contract extraction workflow.
type ExtractionService interface {
	ExtractFromUpload(ctx context.Context, input ExtractUploadInput) (*domain.Extraction, error)
	ExtractFromText(ctx context.Context, rawText string) (*domain.Extraction, error)
	Reprocess(ctx context.Context, extractionID uuid.UUID) (*domain.Extraction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error)
	List(ctx context.Context, offset, limit int) ([]domain.Extraction, int, error)
	GetFileURL(ctx context.Context, extractionID uuid.UUID) (string, error)
	DeleteFile(ctx context.Context, extractionID uuid.UUID) error
}

type extractionService struct {
	extractionRepo port.ExtractionRepository
	fileRepo       port.FileMetaRepository
	storage        port.ObjectStorage
	textExtractor  port.TextExtractor
	s3Cfg          *config.S3Config
	uploadCfg      *config.UploadConfig
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	extractionRepo port.ExtractionRepository,
	fileRepo port.FileMetaRepository,
	storage port.ObjectStorage,
	textExtractor port.TextExtractor,
	s3Cfg *config.S3Config,
	uploadCfg *config.UploadConfig,
) ExtractionService {
	return &extractionService{
		extractionRepo: extractionRepo,
		fileRepo:       fileRepo,
		storage:        storage,
		textExtractor:  textExtractor,
		s3Cfg:          s3Cfg,
		uploadCfg:      uploadCfg,
	}
}

func (s *extractionService) ExtractFromUpload(ctx context.Context, input ExtractUploadInput) (*domain.Extraction, error) {
	// Validate file extension
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Validate file size
	maxBytes := s.uploadCfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(input.File)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}

	// Magic-byte content type detection
	detectedType := http.DetectContentType(data[:min(len(data), 512)])
	if _, validContent := domain.AllowedContentTypes[detectedType]; !validContent {
		return nil, domain.ErrUnsupportedFileType
	}

	fileID := uuid.New()
	s3Key := fmt.Sprintf("contracts/%s/%s", fileID, input.Header.Filename)
	contentType := domain.AllowedFileTypes[fileType]

	// Storage upload and OCR are independent; run them concurrently. An
	// upload failure aborts the request, an OCR failure is recorded on the
	// extraction instead.
	var (
		rawText string
		ocrErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, uploadErr := s.storage.Upload(gctx, port.UploadInput{
			Bucket:      s.s3Cfg.Bucket,
			Key:         s3Key,
			Body:        bytes.NewReader(data),
			ContentType: contentType,
		})
		if uploadErr != nil {
			log.Printf("extractionService: upload of %s failed: %v", s3Key, uploadErr)
			return domain.ErrUploadFailed
		}
		return nil
	})
	g.Go(func() error {
		rawText, ocrErr = s.textExtractor.ExtractText(gctx, data, contentType)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	meta := &domain.FileMeta{
		ID:           fileID,
		FileName:     fileID.String() + "." + ext,
		OriginalName: input.Header.Filename,
		FileType:     fileType,
		FileSize:     int64(len(data)),
		S3Bucket:     s.s3Cfg.Bucket,
		S3Key:        s3Key,
		ContentType:  contentType,
		Status:       domain.FileStatusUploaded,
	}
	if ocrErr != nil {
		// The file is stored but unusable for extraction until a
		// reprocess succeeds.
		meta.Status = domain.FileStatusFailed
	}
	if err := s.fileRepo.Create(ctx, meta); err != nil {
		return nil, err
	}

	extraction := &domain.Extraction{
		ID:     uuid.New(),
		FileID: &fileID,
	}
	if ocrErr != nil {
		extraction.Status = domain.ExtractionStatusFailed
		extraction.Error = ocrErr.Error()
		extraction.Fields = json.RawMessage("{}")
	} else if err := s.populateFields(extraction, rawText); err != nil {
		return nil, err
	}

	if err := s.extractionRepo.Create(ctx, extraction); err != nil {
		return nil, err
	}

	log.Printf("extractionService: extraction %s for file %s finished with status %s",
		extraction.ID, fileID, extraction.Status)
	return extraction, nil
}

func (s *extractionService) ExtractFromText(ctx context.Context, rawText string) (*domain.Extraction, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, domain.ErrEmptyText
	}

	extraction := &domain.Extraction{ID: uuid.New()}
	if err := s.populateFields(extraction, rawText); err != nil {
		return nil, err
	}

	if err := s.extractionRepo.Create(ctx, extraction); err != nil {
		return nil, err
	}
	return extraction, nil
}

// populateFields runs the extraction engine over the transcript and stores
// the resolved record on the extraction row.
func (s *extractionService) populateFields(e *domain.Extraction, rawText string) error {
	fields := extract.ParseContract(rawText)
	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding extracted fields: %w", err)
	}
	e.Status = domain.ExtractionStatusCompleted
	e.Fields = encoded
	e.RawText = rawText
	return nil
}

// Reprocess re-runs OCR and field extraction against the stored original of
// an earlier extraction and records the result as a new extraction row. The
// usual reason is a failed OCR pass or a resolver improvement since the
// first run.
func (s *extractionService) Reprocess(ctx context.Context, extractionID uuid.UUID) (*domain.Extraction, error) {
	prev, err := s.extractionRepo.GetByID(ctx, extractionID)
	if err != nil {
		return nil, err
	}
	if prev.FileID == nil {
		return nil, domain.ErrNotFound
	}
	meta, err := s.fileRepo.GetByID(ctx, *prev.FileID)
	if err != nil {
		return nil, err
	}
	if meta.Status == domain.FileStatusDeleted {
		return nil, domain.ErrNotFound
	}

	data, err := s.storage.Download(ctx, meta.S3Bucket, meta.S3Key)
	if err != nil {
		return nil, fmt.Errorf("extractionService.Reprocess: %w", err)
	}

	extraction := &domain.Extraction{
		ID:     uuid.New(),
		FileID: &meta.ID,
	}
	rawText, ocrErr := s.textExtractor.ExtractText(ctx, data, meta.ContentType)
	if ocrErr != nil {
		extraction.Status = domain.ExtractionStatusFailed
		extraction.Error = ocrErr.Error()
		extraction.Fields = json.RawMessage("{}")
	} else if err := s.populateFields(extraction, rawText); err != nil {
		return nil, err
	}

	// Keep the file row's status in step with the latest OCR outcome.
	fileStatus := domain.FileStatusUploaded
	if ocrErr != nil {
		fileStatus = domain.FileStatusFailed
	}
	if fileStatus != meta.Status {
		if err := s.fileRepo.UpdateStatus(ctx, meta.ID, fileStatus); err != nil {
			log.Printf("extractionService: updating status of file %s: %v", meta.ID, err)
		}
	}

	if err := s.extractionRepo.Create(ctx, extraction); err != nil {
		return nil, err
	}

	log.Printf("extractionService: reprocess of extraction %s produced %s with status %s",
		extractionID, extraction.ID, extraction.Status)
	return extraction, nil
}

// DeleteFile removes the stored original behind an extraction from object
// storage and marks its metadata row deleted. The extraction rows themselves
// are retained.
func (s *extractionService) DeleteFile(ctx context.Context, extractionID uuid.UUID) error {
	extraction, err := s.extractionRepo.GetByID(ctx, extractionID)
	if err != nil {
		return err
	}
	if extraction.FileID == nil {
		return domain.ErrNotFound
	}
	meta, err := s.fileRepo.GetByID(ctx, *extraction.FileID)
	if err != nil {
		return err
	}
	if meta.Status == domain.FileStatusDeleted {
		return domain.ErrNotFound
	}

	if err := s.storage.Delete(ctx, meta.S3Bucket, meta.S3Key); err != nil {
		return fmt.Errorf("extractionService.DeleteFile: %w", err)
	}
	return s.fileRepo.UpdateStatus(ctx, meta.ID, domain.FileStatusDeleted)
}

func (s *extractionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	return s.extractionRepo.GetByID(ctx, id)
}

func (s *extractionService) List(ctx context.Context, offset, limit int) ([]domain.Extraction, int, error) {
	return s.extractionRepo.List(ctx, offset, limit)
}

func (s *extractionService) GetFileURL(ctx context.Context, extractionID uuid.UUID) (string, error) {
	extraction, err := s.extractionRepo.GetByID(ctx, extractionID)
	if err != nil {
		return "", err
	}
	if extraction.FileID == nil {
		return "", domain.ErrNotFound
	}
	meta, err := s.fileRepo.GetByID(ctx, *extraction.FileID)
	if err != nil {
		return "", err
	}
	if meta.Status == domain.FileStatusDeleted {
		return "", domain.ErrNotFound
	}
	return s.storage.GetPresignedURL(ctx, meta.S3Bucket, meta.S3Key, s.s3Cfg.PresignExpiry)
}
