// Package objstore mints time-limited signed download URLs for stored documents.
package objstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Signer produces presigned GET URLs for source document paths.
type Signer struct {
	client *minio.Client
	expiry time.Duration
	logger *zap.Logger
}

// Config holds the object storage settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Expiry    time.Duration
	Logger    *zap.Logger
}

// NewSigner creates an object storage signer.
func NewSigner(cfg *Config) (*Signer, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}

	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = time.Hour
	}

	return &Signer{client: client, expiry: expiry, logger: cfg.Logger}, nil
}

// SignURL mints a presigned GET URL for a stored-object path. Accepts
// "s3://bucket/key" and "bucket/key" forms. Returns an empty string on
// any failure; callers treat that as "no download available".
func (s *Signer) SignURL(ctx context.Context, path string) string {
	bucket, key, err := splitPath(path)
	if err != nil {
		s.logger.Debug("unsignable source path", zap.String("path", path), zap.Error(err))
		return ""
	}

	u, err := s.client.PresignedGetObject(ctx, bucket, key, s.expiry, url.Values{})
	if err != nil {
		s.logger.Warn("presign failed",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err))
		return ""
	}

	return u.String()
}

func splitPath(path string) (bucket, key string, err error) {
	p := strings.TrimPrefix(path, "s3://")
	p = strings.TrimPrefix(p, "/")

	bucket, key, ok := strings.Cut(p, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("path %q is not bucket/key shaped", path)
	}
	return bucket, key, nil
}
