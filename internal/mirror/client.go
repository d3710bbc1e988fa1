// Package mirror is the optional best-effort backup of ledger data into a
// personal cloud-drive folder: one object per vendor-list snapshot, one per
// settings snapshot, one per bill. Writes are idempotent upserts; deletes
// are silent no-ops when the object is already gone. Last writer wins.
package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the narrow surface the mirror consumer needs; tests stub it.
type ObjectStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Remove(ctx context.Context, name string) error
}

// Config for the drive-backed object store.
type Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	RootFolder string // fixed top-level folder, e.g. "BillerPRO"
}

// DriveStore implements ObjectStore over an S3-compatible drive service.
type DriveStore struct {
	client *minio.Client
	bucket string
}

func NewDriveStore(cfg Config) (*DriveStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return &DriveStore{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *DriveStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Put upserts one JSON object. PutObject overwrites, which is exactly the
// find-by-name-then-update-else-create contract.
func (s *DriveStore) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, name,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

// Remove deletes one object, treating "not found" as success.
func (s *DriveStore) Remove(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
