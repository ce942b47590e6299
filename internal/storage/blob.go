package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// BlobStore abstracts the physical object store. Delete is idempotent:
// deleting an already-absent object is not an error.
type BlobStore interface {
	Put(ctx context.Context, path string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// MinioStore is a MinIO-backed BlobStore.
type MinioStore struct {
	client *minio.Client
	logger *zap.Logger
	bucket string
}

// ConnectMinio initializes the MinIO client and ensures the bucket exists.
func ConnectMinio(endpoint, accessKey, secretKey, bucket string, useSSL bool, logger *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("error checking if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("error creating bucket: %w", err)
		}
		logger.Info("Bucket created", zap.String("bucket", bucket))
	}

	logger.Info("MinIO client initialized", zap.String("endpoint", endpoint))

	return &MinioStore{client: client, logger: logger, bucket: bucket}, nil
}

// Put uploads a blob under a unique object key derived from path and
// returns its URL.
func (s *MinioStore) Put(ctx context.Context, path string, reader io.Reader, size int64, contentType string) (string, error) {
	objectKey := fmt.Sprintf("%s/%s", path, uuid.New().String())

	_, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("Failed to upload object", zap.String("key", objectKey), zap.Error(err))
		return "", err
	}

	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, objectKey)
	s.logger.Info("Object uploaded",
		zap.String("key", objectKey),
		zap.Int64("size", size),
		zap.String("contentType", contentType),
	)
	return url, nil
}

// Delete removes a blob by its URL. Objects that are already gone are
// treated as successfully deleted.
func (s *MinioStore) Delete(ctx context.Context, url string) error {
	objectKey, ok := s.objectKeyFromURL(url)
	if !ok {
		s.logger.Warn("Skipping delete of foreign URL", zap.String("url", url))
		return nil
	}

	err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil
		}
		return err
	}
	return nil
}

func (s *MinioStore) objectKeyFromURL(url string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", s.client.EndpointURL().String(), s.bucket)
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
