package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"contractocr/internal/config"
	"contractocr/internal/domain"
	"contractocr/internal/port"
	"contractocr/internal/service"
	"contractocr/mocks"
)

const sampleTranscript = `YOUR INFORMATION:
Customer Name: Jane Doe
Phone Number: (780) 617-4431
YOUR DEVICE DETAILS:
Model: Galaxy S21
Start Date: November 19, 2025
`

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func newUpload(name string, data []byte) service.ExtractUploadInput {
	return service.ExtractUploadInput{
		File:   memFile{bytes.NewReader(data)},
		Header: &multipart.FileHeader{Filename: name, Size: int64(len(data))},
	}
}

func newService(
	extractionRepo *mocks.MockExtractionRepo,
	fileRepo *mocks.MockFileMetaRepo,
	storage *mocks.MockObjectStorage,
	extractor *mocks.MockTextExtractor,
) service.ExtractionService {
	return service.NewExtractionService(
		extractionRepo, fileRepo, storage, extractor,
		&config.S3Config{Bucket: "test-bucket", PresignExpiry: 3600},
		&config.UploadConfig{MaxFileSizeMB: 10},
	)
}

func strDeref(t *testing.T, p *string) string {
	t.Helper()
	require.NotNil(t, p)
	return *p
}

func TestExtractFromUpload_Success(t *testing.T) {
	extractionRepo := new(mocks.MockExtractionRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	extractor := new(mocks.MockTextExtractor)
	svc := newService(extractionRepo, fileRepo, storage, extractor)

	data := []byte("%PDF-1.4 fake contract body")
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "s3://test-bucket/key"}, nil)
	extractor.On("ExtractText", mock.Anything, data, "application/pdf").
		Return(sampleTranscript, nil)
	fileRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FileMeta")).Return(nil)
	extractionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Extraction")).Return(nil)

	extraction, err := svc.ExtractFromUpload(context.Background(), newUpload("contract.pdf", data))
	require.NoError(t, err)
	require.NotNil(t, extraction)

	assert.Equal(t, domain.ExtractionStatusCompleted, extraction.Status)
	require.NotNil(t, extraction.FileID)
	assert.Equal(t, sampleTranscript, extraction.RawText)

	var fields domain.ContractFields
	require.NoError(t, json.Unmarshal(extraction.Fields, &fields))
	require.NotNil(t, fields.CustomerName)
	assert.Equal(t, "Jane Doe", *fields.CustomerName)
	require.NotNil(t, fields.CustomerPhone)
	assert.Equal(t, "7806174431", *fields.CustomerPhone)

	storage.AssertExpectations(t)
	extractor.AssertExpectations(t)
	fileRepo.AssertExpectations(t)
	extractionRepo.AssertExpectations(t)
}

func TestExtractFromUpload_OCRFailureRecordedNotFatal(t *testing.T) {
	extractionRepo := new(mocks.MockExtractionRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	extractor := new(mocks.MockTextExtractor)
	svc := newService(extractionRepo, fileRepo, storage, extractor)

	data := []byte("%PDF-1.4 unreadable scan")
	storage.On("Upload", mock.Anything, mock.Anything).
		Return(&port.UploadOutput{}, nil)
	extractor.On("ExtractText", mock.Anything, data, "application/pdf").
		Return("", domain.ErrTextExtraction)
	fileRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.FileMeta) bool {
		return m.Status == domain.FileStatusFailed
	})).Return(nil)
	extractionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	extraction, err := svc.ExtractFromUpload(context.Background(), newUpload("scan.pdf", data))
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionStatusFailed, extraction.Status)
	assert.NotEmpty(t, extraction.Error)
	fileRepo.AssertExpectations(t)
	extractionRepo.AssertExpectations(t)
}

func TestExtractFromUpload_StorageFailureIsFatal(t *testing.T) {
	extractionRepo := new(mocks.MockExtractionRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	extractor := new(mocks.MockTextExtractor)
	svc := newService(extractionRepo, fileRepo, storage, extractor)

	data := []byte("%PDF-1.4 body")
	storage.On("Upload", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))
	extractor.On("ExtractText", mock.Anything, mock.Anything, mock.Anything).
		Return(sampleTranscript, nil).Maybe()

	_, err := svc.ExtractFromUpload(context.Background(), newUpload("contract.pdf", data))
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	fileRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExtractFromUpload_Validation(t *testing.T) {
	svc := newService(new(mocks.MockExtractionRepo), new(mocks.MockFileMetaRepo),
		new(mocks.MockObjectStorage), new(mocks.MockTextExtractor))

	_, err := svc.ExtractFromUpload(context.Background(), newUpload("notes.txt", []byte("plain text")))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	big := newUpload("contract.pdf", []byte("%PDF-1.4"))
	big.Header.Size = 11 * 1024 * 1024
	_, err = svc.ExtractFromUpload(context.Background(), big)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	_, err = svc.ExtractFromUpload(context.Background(), newUpload("contract.pdf", nil))
	assert.ErrorIs(t, err, domain.ErrEmptyFile)
}

func TestExtractFromText_Success(t *testing.T) {
	extractionRepo := new(mocks.MockExtractionRepo)
	svc := newService(extractionRepo, new(mocks.MockFileMetaRepo),
		new(mocks.MockObjectStorage), new(mocks.MockTextExtractor))

	extractionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Extraction")).Return(nil)

	extraction, err := svc.ExtractFromText(context.Background(), sampleTranscript)
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionStatusCompleted, extraction.Status)
	assert.Nil(t, extraction.FileID)

	var fields domain.ContractFields
	require.NoError(t, json.Unmarshal(extraction.Fields, &fields))
	require.NotNil(t, fields.DeviceModel)
	assert.Equal(t, "Galaxy S21", *fields.DeviceModel)
}

func TestExtractFromText_Blank(t *testing.T) {
	svc := newService(new(mocks.MockExtractionRepo), new(mocks.MockFileMetaRepo),
		new(mocks.MockObjectStorage), new(mocks.MockTextExtractor))

	_, err := svc.ExtractFromText(context.Background(), "   \n ")
	assert.ErrorIs(t, err, domain.ErrEmptyText)
}

func TestReprocess_Success(t *testing.T) {
	extractionRepo := new(mocks.MockExtractionRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	extractor := new(mocks.MockTextExtractor)
	svc := newService(extractionRepo, fileRepo, storage, extractor)

	fileID := uuid.New()
	prevID := uuid.New()
	data := []byte("%PDF-1.4 stored original")

	extractionRepo.On("GetByID", mock.Anything, prevID).
		Return(&domain.Extraction{ID: prevID, FileID: &fileID, Status: domain.ExtractionStatusFailed}, nil)
	fileRepo.On("GetByID", mock.Anything, fileID).
		Return(&domain.FileMeta{
			ID: fileID, S3Bucket: "test-bucket", S3Key: "contracts/x",
			ContentType: "application/pdf", Status: domain.FileStatusFailed,
		}, nil)
	storage.On("Download", mock.Anything, "test-bucket", "contracts/x").Return(data, nil)
	extractor.On("ExtractText", mock.Anything, data, "application/pdf").
		Return(sampleTranscript, nil)
	fileRepo.On("UpdateStatus", mock.Anything, fileID, domain.FileStatusUploaded).Return(nil)
	extractionRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Extraction")).Return(nil)

	extraction, err := svc.Reprocess(context.Background(), prevID)
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionStatusCompleted, extraction.Status)
	assert.NotEqual(t, prevID, extraction.ID)
	require.NotNil(t, extraction.FileID)
	assert.Equal(t, fileID, *extraction.FileID)

	var fields domain.ContractFields
	require.NoError(t, json.Unmarshal(extraction.Fields, &fields))
	assert.Equal(t, "Jane Doe", strDeref(t, fields.CustomerName))

	storage.AssertExpectations(t)
	fileRepo.AssertExpectations(t)
	extractionRepo.AssertExpectations(t)
}

func TestReprocess_OCRFailureMarksFileFailed(t *testing.T) {
	extractionRepo := new(mocks.MockExtractionRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	extractor := new(mocks.MockTextExtractor)
	svc := newService(extractionRepo, fileRepo, storage, extractor)

	fileID := uuid.New()
	prevID := uuid.New()

	extractionRepo.On("GetByID", mock.Anything, prevID).
		Return(&domain.Extraction{ID: prevID, FileID: &fileID}, nil)
	fileRepo.On("GetByID", mock.Anything, fileID).
		Return(&domain.FileMeta{
			ID: fileID, S3Bucket: "test-bucket", S3Key: "contracts/x",
			ContentType: "application/pdf", Status: domain.FileStatusUploaded,
		}, nil)
	storage.On("Download", mock.Anything, "test-bucket", "contracts/x").
		Return([]byte("%PDF-1.4 garbled"), nil)
	extractor.On("ExtractText", mock.Anything, mock.Anything, "application/pdf").
		Return("", domain.ErrTextExtraction)
	fileRepo.On("UpdateStatus", mock.Anything, fileID, domain.FileStatusFailed).Return(nil)
	extractionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	extraction, err := svc.Reprocess(context.Background(), prevID)
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionStatusFailed, extraction.Status)
	fileRepo.AssertExpectations(t)
}

func TestReprocess_TextOnlyExtraction(t *testing.T) {
	extractionRepo := new(mocks.MockExtractionRepo)
	svc := newService(extractionRepo, new(mocks.MockFileMetaRepo),
		new(mocks.MockObjectStorage), new(mocks.MockTextExtractor))

	id := uuid.New()
	extractionRepo.On("GetByID", mock.Anything, id).
		Return(&domain.Extraction{ID: id}, nil)

	_, err := svc.Reprocess(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteFile(t *testing.T) {
	extractionRepo := new(mocks.MockExtractionRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newService(extractionRepo, fileRepo, storage, new(mocks.MockTextExtractor))

	fileID := uuid.New()
	extractionID := uuid.New()

	extractionRepo.On("GetByID", mock.Anything, extractionID).
		Return(&domain.Extraction{ID: extractionID, FileID: &fileID}, nil)
	fileRepo.On("GetByID", mock.Anything, fileID).
		Return(&domain.FileMeta{
			ID: fileID, S3Bucket: "test-bucket", S3Key: "contracts/x",
			Status: domain.FileStatusUploaded,
		}, nil)
	storage.On("Delete", mock.Anything, "test-bucket", "contracts/x").Return(nil)
	fileRepo.On("UpdateStatus", mock.Anything, fileID, domain.FileStatusDeleted).Return(nil)

	require.NoError(t, svc.DeleteFile(context.Background(), extractionID))

	storage.AssertExpectations(t)
	fileRepo.AssertExpectations(t)
}

func TestDeleteFile_AlreadyDeleted(t *testing.T) {
	extractionRepo := new(mocks.MockExtractionRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newService(extractionRepo, fileRepo, storage, new(mocks.MockTextExtractor))

	fileID := uuid.New()
	extractionID := uuid.New()

	extractionRepo.On("GetByID", mock.Anything, extractionID).
		Return(&domain.Extraction{ID: extractionID, FileID: &fileID}, nil)
	fileRepo.On("GetByID", mock.Anything, fileID).
		Return(&domain.FileMeta{ID: fileID, Status: domain.FileStatusDeleted}, nil)

	err := svc.DeleteFile(context.Background(), extractionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetFileURL(t *testing.T) {
	extractionRepo := new(mocks.MockExtractionRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newService(extractionRepo, fileRepo, storage, new(mocks.MockTextExtractor))

	fileID := uuid.New()
	extractionID := uuid.New()
	extractionRepo.On("GetByID", mock.Anything, extractionID).
		Return(&domain.Extraction{ID: extractionID, FileID: &fileID}, nil)
	fileRepo.On("GetByID", mock.Anything, fileID).
		Return(&domain.FileMeta{ID: fileID, S3Bucket: "test-bucket", S3Key: "contracts/x"}, nil)
	storage.On("GetPresignedURL", mock.Anything, "test-bucket", "contracts/x", int64(3600)).
		Return("https://signed.example/x", nil)

	url, err := svc.GetFileURL(context.Background(), extractionID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/x", url)
}

func TestGetFileURL_TextOnlyExtractionHasNoFile(t *testing.T) {
	extractionRepo := new(mocks.MockExtractionRepo)
	svc := newService(extractionRepo, new(mocks.MockFileMetaRepo),
		new(mocks.MockObjectStorage), new(mocks.MockTextExtractor))

	extractionID := uuid.New()
	extractionRepo.On("GetByID", mock.Anything, extractionID).
		Return(&domain.Extraction{ID: extractionID}, nil)

	_, err := svc.GetFileURL(context.Background(), extractionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetFileURL_DeletedFile(t *testing.T) {
	extractionRepo := new(mocks.MockExtractionRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newService(extractionRepo, fileRepo, storage, new(mocks.MockTextExtractor))

	fileID := uuid.New()
	extractionID := uuid.New()
	extractionRepo.On("GetByID", mock.Anything, extractionID).
		Return(&domain.Extraction{ID: extractionID, FileID: &fileID}, nil)
	fileRepo.On("GetByID", mock.Anything, fileID).
		Return(&domain.FileMeta{ID: fileID, Status: domain.FileStatusDeleted}, nil)

	_, err := svc.GetFileURL(context.Background(), extractionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
