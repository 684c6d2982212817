package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tnqbao/gau-travel-service/config"
	"github.com/tnqbao/gau-travel-service/entity"
	"github.com/tnqbao/gau-travel-service/utils"
)

// ObjectStorage is the blob store used by every upload feature. Keys are
// produced by utils.ResolveBlobPath; all keys share one bucket.
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, string, error)
	DeleteObject(ctx context.Context, key string) error
	ObjectExists(ctx context.Context, key string) (bool, error)
	ListObjects(ctx context.Context, prefix string) ([]entity.BlobInfo, error)
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	DeleteObjectsWithPrefix(ctx context.Context, prefix string) error
}

type MinioClient struct {
	Client   *minio.Client
	Endpoint string
	Bucket   string
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	rootUser := cfg.Minio.RootUser
	if rootUser == "" {
		panic("MinIO root user is not configured")
	}

	rootPassword := cfg.Minio.RootPassword
	if rootPassword == "" {
		panic("MinIO root password is not configured")
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	client := &MinioClient{
		Client:   minioClient,
		Endpoint: endpoint,
		Bucket:   cfg.Minio.Bucket,
	}

	if err := client.EnsureBucket(context.Background()); err != nil {
		panic(fmt.Sprintf("Failed to ensure MinIO bucket %s: %v", cfg.Minio.Bucket, err))
	}

	return client
}

// EnsureBucket creates the shared bucket if it doesn't exist
func (m *MinioClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if err := m.Client.MakeBucket(ctx, m.Bucket, minio.MakeBucketOptions{Region: "us-east-1"}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (m *MinioClient) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("%w: object key cannot be empty", utils.ErrValidation)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	_, err := m.Client.PutObject(ctx, m.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to put object %s: %w", utils.ErrStorage, key, err)
	}

	return nil
}

func (m *MinioClient) GetObject(ctx context.Context, key string) ([]byte, string, error) {
	object, err := m.Client.GetObject(ctx, m.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to get object %s: %w", utils.ErrStorage, key, err)
	}
	defer object.Close()

	info, err := object.Stat()
	if err != nil {
		if isNoSuchKey(err) {
			return nil, "", fmt.Errorf("%w: object %s", utils.ErrNotFound, key)
		}
		return nil, "", fmt.Errorf("%w: failed to stat object %s: %w", utils.ErrStorage, key, err)
	}

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read object %s: %w", utils.ErrStorage, key, err)
	}

	return data, info.ContentType, nil
}

func (m *MinioClient) DeleteObject(ctx context.Context, key string) error {
	exists, err := m.ObjectExists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: object %s", utils.ErrNotFound, key)
	}

	if err := m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: failed to delete object %s: %w", utils.ErrStorage, key, err)
	}

	return nil
}

func (m *MinioClient) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := m.Client.StatObject(ctx, m.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to stat object %s: %w", utils.ErrStorage, key, err)
	}
	return true, nil
}

func (m *MinioClient) ListObjects(ctx context.Context, prefix string) ([]entity.BlobInfo, error) {
	objectCh := m.Client.ListObjects(ctx, m.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var blobs []entity.BlobInfo
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("%w: failed to list objects under %s: %w", utils.ErrStorage, prefix, object.Err)
		}
		blobs = append(blobs, entity.BlobInfo{
			Path:         object.Key,
			Name:         path.Base(object.Key),
			Size:         object.Size,
			ContentType:  object.ContentType,
			LastModified: object.LastModified,
		})
	}

	return blobs, nil
}

// PresignedGetURL returns a time-limited read URL for one object.
func (m *MinioClient) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.Client.PresignedGetObject(ctx, m.Bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to presign %s: %w", utils.ErrStorage, key, err)
	}
	return u.String(), nil
}

// DeleteObjectsWithPrefix deletes all objects with a given prefix in the bucket
func (m *MinioClient) DeleteObjectsWithPrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return fmt.Errorf("%w: refusing to delete with an empty prefix", utils.ErrValidation)
	}

	objectCh := m.Client.ListObjects(ctx, m.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	objectsCh := make(chan minio.ObjectInfo)

	go func() {
		defer close(objectsCh)
		for obj := range objectCh {
			if obj.Err != nil {
				continue
			}
			objectsCh <- obj
		}
	}()

	errorCh := m.Client.RemoveObjects(ctx, m.Bucket, objectsCh, minio.RemoveObjectsOptions{})

	var firstErr error
	for err := range errorCh {
		if err.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: failed to delete object %s: %w", utils.ErrStorage, err.ObjectName, err.Err)
		}
	}

	return firstErr
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
