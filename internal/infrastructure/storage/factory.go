package storage

import (
	"context"

	appimport "github.com/landedcost/backend/internal/application/importation"
	"github.com/landedcost/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New returns S3 storage when a bucket is configured and the stub otherwise
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (appimport.DocumentStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled() {
		logger.Warn("document storage not configured, using stub storage")
		return NewStubDocumentStorage(""), nil
	}

	s3Storage, err := NewS3DocumentStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("using S3 document storage", zap.String("bucket", s3Storage.Bucket()))
	return s3Storage, nil
}
