package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds the S3-compatible endpoint settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioBackend stores blobs as objects named by their reference.
type MinioBackend struct {
	client *minio.Client
	bucket string
}

// NewMinioBackend connects and creates the bucket when it does not exist yet.
func NewMinioBackend(ctx context.Context, cfg MinioConfig) (*MinioBackend, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioBackend{client: client, bucket: cfg.Bucket}, nil
}

func (b *MinioBackend) Put(ctx context.Context, ref string, data []byte) error {
	_, err := b.client.PutObject(ctx, b.bucket, ref, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}

func (b *MinioBackend) Get(ctx context.Context, ref string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapMinioErr(err)
	}
	return data, nil
}

func (b *MinioBackend) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.bucket, ref, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if mapMinioErr(err) == ErrBlobNotFound {
		return false, nil
	}
	return false, err
}

func mapMinioErr(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrBlobNotFound
	}
	return err
}
