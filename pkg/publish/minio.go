// Package publish uploads generated maps to S3-compatible storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Prefix is prepended to every uploaded object key.
const Prefix = "maps"

var ErrMissingCredentials = errors.New("missing endpoint or credentials")

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

// objectStore is the subset of *minio.Client used for publishing.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type Publisher struct {
	store  objectStore
	bucket string
	region string
}

// New connects to the storage endpoint described by cfg.
func New(cfg Config) (*Publisher, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, ErrMissingCredentials
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	slog.Debug("Created storage client", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &Publisher{store: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

func (p *Publisher) Bucket() string {
	return p.bucket
}

// ObjectKey is the key a local file is stored under.
func ObjectKey(file string) string {
	return path.Join(Prefix, filepath.Base(file))
}

func (p *Publisher) ensureBucket(ctx context.Context) error {
	exists, err := p.store.BucketExists(ctx, p.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket %s: %w", p.bucket, err)
	}
	if exists {
		return nil
	}
	if err := p.store.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region}); err != nil {
		return fmt.Errorf("error creating bucket %s: %w", p.bucket, err)
	}
	slog.Info("Created bucket", "bucket", p.bucket)
	return nil
}

// Upload stores the file at filePath, creating the bucket if needed, and
// returns the object location as bucket/key.
func (p *Publisher) Upload(ctx context.Context, filePath string) (string, error) {
	if err := p.ensureBucket(ctx); err != nil {
		return "", err
	}
	key := ObjectKey(filePath)
	opts := minio.PutObjectOptions{ContentType: contentType(filePath)}
	info, err := p.store.FPutObject(ctx, p.bucket, key, filePath, opts)
	if err != nil {
		return "", fmt.Errorf("error uploading %s: %w", filePath, err)
	}
	slog.Info("Uploaded file", "bucket", p.bucket, "key", key, "size", info.Size)
	return p.bucket + "/" + key, nil
}

func contentType(file string) string {
	switch filepath.Ext(file) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".gpx":
		return "application/gpx+xml"
	}
	if t := mime.TypeByExtension(filepath.Ext(file)); t != "" {
		return t
	}
	return "application/octet-stream"
}
