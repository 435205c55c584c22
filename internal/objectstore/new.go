package objectstore

import (
	"context"
	"fmt"

	"ResumeSense/internal/config"
)

// New builds the bucket selected by cfg.Backend. secret signs local download
// links.
func New(ctx context.Context, cfg config.StorageConfig, publicBaseURL string, secret []byte) (Bucket, error) {
	switch cfg.Backend {
	case "local", "":
		return NewLocalBucket(cfg.Dir, cfg.Bucket, publicBaseURL, secret)
	case "s3":
		return NewS3Bucket(ctx, S3Options{
			Bucket:    cfg.Bucket,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
