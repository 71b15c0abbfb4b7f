package config

import (
	"farmreg/domain"
	"farmreg/storage"
	"os"
)

// BootStorage connects the blob store client from environment settings.
func BootStorage() (domain.Uploader, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "files"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	return storage.NewMinioUploader(endpoint, accessKey, secretKey, bucket, useSSL)
}
