package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// MinioUploader implements Uploader against a MinIO (or any S3-compatible)
// bucket.
type MinioUploader struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioUploader builds an uploader writing into bucket. publicURL is the
// externally reachable base (CDN or the MinIO endpoint itself); object keys
// are appended to it.
func NewMinioUploader(client *minio.Client, bucket, publicURL string) *MinioUploader {
	return &MinioUploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Upload writes the object and returns its public URL.
func (u *MinioUploader) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := u.client.PutObject(ctx, u.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s/%s", u.publicURL, u.bucket, key), nil
}
