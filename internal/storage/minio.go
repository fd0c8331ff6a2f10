package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"projectdrop/internal/config"
)

// minioStorage implements the Storage interface on an S3-compatible backend
// (MinIO, AWS S3, etc.) for local development. Object stores have no real
// folders, so a "folder id" is a key prefix and existence is tracked with a
// zero-byte marker object. The shareable link is a presigned GET URL.
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client *minio.Client
	bucket string
}

const folderMarker = ".keep"

// Presigned URLs cannot outlive the S3 maximum of seven days.
const shareLinkExpiry = 7 * 24 * time.Hour

// NewMinIO creates a new S3-compatible storage client backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStorage{client: cli, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

func folderKey(name, parentID string) string {
	if parentID == "" {
		return name
	}
	return path.Join(parentID, name)
}

// FindFolder checks for the folder's marker object. The returned id is the
// key prefix used as the parent for nested lookups and uploads.
func (m *minioStorage) FindFolder(ctx context.Context, name, parentID string) (string, bool, error) {
	key := folderKey(name, parentID)
	_, err := m.client.StatObject(ctx, m.bucket, path.Join(key, folderMarker), minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
			return "", false, nil
		}
		return "", false, fmt.Errorf("search folder %q: %w", name, err)
	}
	return key, true, nil
}

// CreateFolder writes the marker object for the prefix.
func (m *minioStorage) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	key := folderKey(name, parentID)
	_, err := m.client.PutObject(ctx, m.bucket, path.Join(key, folderMarker),
		bytes.NewReader(nil), 0, minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return key, nil
}

// UploadFile uploads an object using streaming I/O only (no local disk).
func (m *minioStorage) UploadFile(ctx context.Context, name, folderID string, r io.Reader, size int64, contentType string) (FileInfo, error) {
	key := path.Join(folderID, name)
	info, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return FileInfo{}, fmt.Errorf("upload file %q: %w", name, err)
	}
	return FileInfo{ID: key, Name: name, Size: info.Size}, nil
}

// ShareWithLink generates a presigned GET URL for the object.
func (m *minioStorage) ShareWithLink(ctx context.Context, fileID string) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, fileID, shareLinkExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign link: %w", err)
	}
	return u.String(), nil
}
