package port

import (
	"context"
	"io"
)

// UploadInput carries one object destined for blob storage.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
}

// UploadOutput describes where a stored object landed.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts blob storage for original contract documents.
// Presigned URLs let clients download originals without routing the bytes
// through this service.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
