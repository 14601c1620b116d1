package services

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ReceiptStorage stores expense receipt files in object storage.
type ReceiptStorage interface {
	UploadReceipt(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error
	ReceiptURL(objectName string, expiry time.Duration) (string, error)
	DeleteReceipt(ctx context.Context, objectName string) error
	EnsureBucketExists(ctx context.Context) error
}

type minioReceiptStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioReceiptStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool) (ReceiptStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioReceiptStorage{client: client, bucket: bucket}, nil
}

func (m *minioReceiptStorage) UploadReceipt(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *minioReceiptStorage) ReceiptURL(objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(context.Background(), m.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioReceiptStorage) DeleteReceipt(ctx context.Context, objectName string) error {
	return m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
}

func (m *minioReceiptStorage) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}
