package services

import (
	"context"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService stores archive artifacts in object storage.
type StorageService interface {
	EnsureBucketExists(ctx context.Context, bucketName string) error
	UploadDirectory(ctx context.Context, bucketName, prefix, dir string) (int64, error)
	RemovePrefix(ctx context.Context, bucketName, prefix string) error
}

type minioStorage struct {
	client *minio.Client
}

func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool) (StorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStorage{client: client}, nil
}

func (m *minioStorage) EnsureBucketExists(ctx context.Context, bucketName string) error {
	found, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	}
	return nil
}

// UploadDirectory uploads every regular file under dir to bucketName under
// prefix, preserving relative paths. Returns total bytes uploaded.
func (m *minioStorage) UploadDirectory(ctx context.Context, bucketName, prefix, dir string) (int64, error) {
	var total int64
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		objectName := prefix + "/" + filepath.ToSlash(rel)
		uploaded, err := m.client.FPutObject(ctx, bucketName, objectName, path, minio.PutObjectOptions{})
		if err != nil {
			return err
		}
		total += uploaded.Size
		return nil
	})
	return total, err
}

func (m *minioStorage) RemovePrefix(ctx context.Context, bucketName, prefix string) error {
	objects := m.client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objects {
		if object.Err != nil {
			return object.Err
		}
		if err := m.client.RemoveObject(ctx, bucketName, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	return nil
}
