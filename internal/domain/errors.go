package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("file is empty")
	ErrEmptyText           = errors.New("text is empty")
	ErrTextExtraction      = errors.New("text extraction from document failed")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)
