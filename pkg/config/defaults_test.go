package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marmos91/hdrive/internal/bytesize"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	assert.Contains(t, cfg.Telemetry.Profiling.ProfileTypes, "cpu")
	assert.Equal(t, 10*time.Second, cfg.API.ReadTimeout)
	assert.Equal(t, SourceFilesystem, cfg.Assets.Type)
	assert.Equal(t, "res/images", cfg.Assets.Filesystem.BasePath)
	assert.Equal(t, "res/assets.db", cfg.Assets.Badger.Path)
	assert.Equal(t, 16*bytesize.MiB, cfg.Assets.MaxSize)
	assert.Equal(t, 8, cfg.Assets.Workers)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	off := false
	cfg := &Config{
		Logging: LoggingConfig{Level: "warn", Format: "json", Output: "stdout"},
		Assets:  AssetsConfig{Type: "S3", ImagesOnly: &off, Workers: 2},
		Session: SessionConfig{BatchSize: 5, FrameInterval: time.Second},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, "WARN", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, SourceS3, cfg.Assets.Type)
	assert.False(t, cfg.Assets.IsImagesOnly())
	assert.Equal(t, 2, cfg.Assets.Workers)
	assert.Equal(t, 5, cfg.Session.BatchSize)
	assert.Equal(t, time.Second, cfg.Session.FrameInterval)
}

func TestAssetsConfig_DecodeOptions(t *testing.T) {
	cfg := GetDefaultConfig()
	opts := cfg.Assets.DecodeOptions()
	assert.True(t, opts.ImagesOnly)
	assert.Equal(t, 16*bytesize.MiB, opts.MaxSize)
}
