package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-storage/quota/domain"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

// MinioStore keeps user files in one S3-compatible bucket.
type MinioStore struct {
	cl     *minio.Client
	bucket string
}

func NewMinioStore(cfg Config) (*MinioStore, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}
	return &MinioStore{cl: cl, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context, region string) error {
	exists, err := s.cl.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.cl.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	logrus.Infof("[STORAGE] Created bucket %s", s.bucket)
	return nil
}

// List returns the direct entries under prefix. Sub-folders show up as
// zero-size entries.
func (s *MinioStore) List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out []domain.ObjectInfo
	for obj := range s.cl.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, domain.ObjectInfo{
			Name:         strings.TrimPrefix(obj.Key, prefix),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return out, nil
}

func (s *MinioStore) Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) (domain.StoredFile, error) {
	info, err := s.cl.PutObject(ctx, s.bucket, path, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return domain.StoredFile{}, err
	}
	return domain.StoredFile{
		ID:          info.VersionID,
		Path:        path,
		FullPath:    s.bucket + "/" + path,
		Size:        info.Size,
		ContentType: contentType,
		ETag:        info.ETag,
	}, nil
}

// Ping checks that the bucket is reachable.
func (s *MinioStore) Ping(ctx context.Context) error {
	_, err := s.cl.BucketExists(ctx, s.bucket)
	return err
}
