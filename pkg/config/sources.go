package config

import (
	"context"
	"fmt"

	"github.com/marmos91/hdrive/internal/logger"
	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/asset/source/badger"
	"github.com/marmos91/hdrive/pkg/asset/source/fs"
	"github.com/marmos91/hdrive/pkg/asset/source/memory"
	"github.com/marmos91/hdrive/pkg/asset/source/s3"
	promMetrics "github.com/marmos91/hdrive/pkg/metrics/prometheus"
)

// CreateAssetSource opens the source selected by cfg.Type. The caller owns
// the returned source and must Close it.
func CreateAssetSource(ctx context.Context, cfg AssetsConfig) (asset.Source, error) {
	logger.Debug("Creating asset source", logger.KeySourceType, cfg.Type)

	switch cfg.Type {
	case SourceMemory:
		return memory.New(), nil
	case SourceFilesystem:
		return createFSSource(cfg.Filesystem)
	case SourceS3:
		return createS3Source(ctx, cfg.S3)
	case SourceBadger:
		return createBadgerSource(cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown asset source type: %q", cfg.Type)
	}
}

func createFSSource(cfg fs.Config) (asset.Source, error) {
	src, err := fs.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open filesystem source: %w", err)
	}
	return src, nil
}

func createS3Source(ctx context.Context, cfg s3.Config) (asset.Source, error) {
	src, err := s3.NewFromConfig(ctx, cfg, promMetrics.NewS3Metrics())
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 source: %w", err)
	}
	return src, nil
}

func createBadgerSource(cfg badger.Config) (asset.Source, error) {
	src, err := badger.New(cfg)
	if err != nil {
		return nil, err
	}
	return src, nil
}
