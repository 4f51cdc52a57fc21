// Package output delivers the finished GPX document to its destination.
package output

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Stdout is the destination name for standard output.
const Stdout = "-"

// ContentType is used for uploaded documents.
const ContentType = "application/gpx+xml"

const s3Scheme = "s3://"

// Uploader stores an object in a bucket.
type Uploader interface {
	Upload(ctx context.Context, bucket, key string, data []byte) error
}

// Writer routes documents to stdout, a local file, or object storage.
type Writer struct {
	Stdout io.Writer

	// NewUploader is called for each s3:// destination.
	NewUploader func() (Uploader, error)
}

// NewWriter creates a writer for os.Stdout that uploads with MINIO_*
// credentials from the environment.
func NewWriter() *Writer {
	return &Writer{
		Stdout: os.Stdout,
		NewUploader: func() (Uploader, error) {
			return NewS3UploaderFromEnv()
		},
	}
}

// Write delivers data to dest: "-" or "" for stdout, "s3://bucket/key" for
// object storage, anything else is a local file path.
func (w *Writer) Write(ctx context.Context, dest string, data []byte) error {
	switch {
	case dest == "" || dest == Stdout:
		if _, err := w.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	case strings.HasPrefix(dest, s3Scheme):
		bucket, key, err := ParseS3(dest)
		if err != nil {
			return err
		}
		if w.NewUploader == nil {
			return fmt.Errorf("object storage output is not configured")
		}
		uploader, err := w.NewUploader()
		if err != nil {
			return err
		}
		return uploader.Upload(ctx, bucket, key, data)
	default:
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}
}

// ParseS3 splits an s3://bucket/key destination.
func ParseS3(dest string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(dest, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid object destination %q: want s3://bucket/key", dest)
	}
	return bucket, key, nil
}

// S3Uploader is a client for S3-compatible storage.
type S3Uploader struct {
	client *minio.Client
}

// NewS3UploaderFromEnv connects using MINIO_ENDPOINT, MINIO_ACCESS_KEY,
// MINIO_SECRET_KEY and MINIO_USE_SSL.
func NewS3UploaderFromEnv() (*S3Uploader, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("missing one or more required environment variables: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &S3Uploader{client: client}, nil
}

// Upload stores data under key, overwriting any existing object.
func (u *S3Uploader) Upload(ctx context.Context, bucket, key string, data []byte) error {
	_, err := u.client.PutObject(
		ctx,
		bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: ContentType},
	)
	if err != nil {
		return fmt.Errorf("failed to store object in S3: %w", err)
	}
	return nil
}
