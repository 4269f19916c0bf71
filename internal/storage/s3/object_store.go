// Package s3 implements port.ObjectStorage on top of the AWS SDK. A non-empty
// endpoint in the config switches the client to path-style addressing so the
// same code runs against MinIO or localstack in development.
package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"contractocr/internal/config"
	"contractocr/internal/port"
)

type objectStore struct {
	api       *s3.Client
	uploader  *manager.Uploader
	presigner *s3.PresignClient
}

// NewObjectStore builds the S3-backed ObjectStorage. Static credentials from
// the config take precedence; otherwise the SDK default chain (env, shared
// config, instance role) applies.
func NewObjectStore(ctx context.Context, cfg *config.S3Config) (port.ObjectStorage, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("objectStore: loading aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &objectStore{
		api:       api,
		uploader:  manager.NewUploader(api),
		presigner: s3.NewPresignClient(api),
	}, nil
}

func (o *objectStore) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	result, err := o.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(input.Bucket),
		Key:         aws.String(input.Key),
		Body:        input.Body,
		ContentType: aws.String(input.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("objectStore: uploading %s/%s: %w", input.Bucket, input.Key, err)
	}

	out := &port.UploadOutput{Location: result.Location}
	if result.ETag != nil {
		out.ETag = *result.ETag
	}
	return out, nil
}

func (o *objectStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := o.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("objectStore: fetching %s/%s: %w", bucket, key, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("objectStore: reading %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

func (o *objectStore) Delete(ctx context.Context, bucket, key string) error {
	if _, err := o.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("objectStore: deleting %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (o *objectStore) GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error) {
	req, err := o.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(time.Duration(expirySeconds)*time.Second))
	if err != nil {
		return "", fmt.Errorf("objectStore: presigning %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}
