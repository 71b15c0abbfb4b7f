package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"regexp"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioUploader writes farmer documents to a MinIO/S3 compatible store.
type MinioUploader struct {
	client *minio.Client
	bucket string
}

// NewMinioUploader connects to MinIO and ensures the bucket exists.
func NewMinioUploader(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioUploader, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioUploader{client: client, bucket: bucket}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.]`)

// ObjectKey builds a collision-resistant storage key for an uploaded file:
// the current unix-millisecond timestamp joined with the original filename
// stripped to alphanumerics and dots.
func ObjectKey(category, filename string) string {
	return fmt.Sprintf("%s/%d-%s", category, time.Now().UnixMilli(), unsafeChars.ReplaceAllString(filename, ""))
}

// Upload stores one document under <category>/<generated key> and returns
// the storage path to persist.
func (u *MinioUploader) Upload(ctx context.Context, file *multipart.FileHeader, category string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	key := ObjectKey(category, file.Filename)
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = u.client.PutObject(ctx, u.bucket, key, src, file.Size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

// PresignedURL generates a pre-signed GET URL for a stored document path.
func (u *MinioUploader) PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	url, err := u.client.PresignedGetObject(ctx, u.bucket, path, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return url.String(), nil
}

// Remove deletes a stored document. Used only as best-effort compensation
// when persistence fails after an upload already succeeded.
func (u *MinioUploader) Remove(ctx context.Context, path string) error {
	if err := u.client.RemoveObject(ctx, u.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}
