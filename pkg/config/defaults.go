package config

import (
	"strings"
	"time"

	"github.com/marmos91/hdrive/internal/bytesize"
	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/asset/source/fs"
	"github.com/marmos91/hdrive/pkg/session"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values (0, "", false, nil) are replaced with defaults; explicit values
// are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyShutdownTimeoutDefaults(cfg)
	cfg.API.ApplyDefaults()
	applyCatalogDefaults(&cfg.Catalog)
	applyAssetsDefaults(&cfg.Assets)
	applySessionDefaults(&cfg.Session)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyCatalogDefaults(cfg *CatalogConfig) {
	if cfg.Path == "" {
		cfg.Path = "res/recipes.json"
	}
}

// applyAssetsDefaults defaults to the on-disk image directory. MaxSize is
// only defaulted when unset; set it to a tiny value rather than zero to
// effectively disable loading.
func applyAssetsDefaults(cfg *AssetsConfig) {
	if cfg.Type == "" {
		cfg.Type = SourceFilesystem
	}
	cfg.Type = strings.ToLower(cfg.Type)

	if cfg.Filesystem.BasePath == "" {
		cfg.Filesystem = fs.DefaultConfig()
	}
	if cfg.Badger.Path == "" {
		cfg.Badger.Path = "res/assets.db"
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = asset.DefaultDecodeOptions().MaxSize
	}
	if cfg.ImagesOnly == nil {
		imagesOnly := true
		cfg.ImagesOnly = &imagesOnly
	}
	if cfg.Workers == 0 {
		cfg.Workers = 8
	}
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = session.DefaultBatchSize
	}
	if cfg.FrameInterval == 0 {
		cfg.FrameInterval = session.DefaultFrameInterval
	}
}

// DecodeOptions converts the assets section into cache decode options.
func (c *AssetsConfig) DecodeOptions() asset.DecodeOptions {
	return asset.DecodeOptions{
		MaxSize:    c.MaxSize,
		ImagesOnly: c.IsImagesOnly(),
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
// Used to generate sample configuration files and in tests.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Assets: AssetsConfig{
			Type:    SourceFilesystem,
			MaxSize: 16 * bytesize.MiB,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
