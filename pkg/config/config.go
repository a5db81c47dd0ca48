package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/hdrive/internal/bytesize"
	"github.com/marmos91/hdrive/pkg/api"
	"github.com/marmos91/hdrive/pkg/asset/source/badger"
	"github.com/marmos91/hdrive/pkg/asset/source/fs"
	"github.com/marmos91/hdrive/pkg/asset/source/s3"
)

// Config is the complete hdrive configuration. Flags override HDRIVE_*
// environment variables, which override the file, which overrides defaults.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout bounds how long serve waits for the pending prefetch
	// and open requests on exit.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	API     api.APIConfig `mapstructure:"api" yaml:"api"`
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Assets  AssetsConfig  `mapstructure:"assets" yaml:"assets"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
}

// LoggingConfig configures internal/logger. Level is case-insensitive and
// stored uppercase; Output is stdout, stderr or a file path.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig configures span export to an OTLP gRPC collector.
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate is the fraction of root spans kept.
	SampleRate float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig configures push profiling to a Pyroscope server.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// MetricsConfig contains Prometheus metrics configuration.
// Metrics are served on the API router under /metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// CatalogConfig locates the recipe catalog.
type CatalogConfig struct {
	// Path is the catalog JSON file
	// Default: "res/recipes.json"
	Path string `mapstructure:"path" validate:"required" yaml:"path"`
}

// Asset source types.
const (
	SourceMemory     = "memory"
	SourceFilesystem = "filesystem"
	SourceS3         = "s3"
	SourceBadger     = "badger"
)

// AssetsConfig selects the asset source and decoding limits.
type AssetsConfig struct {
	// Type selects the source implementation
	// Valid values: memory, filesystem, s3, badger
	Type string `mapstructure:"type" validate:"required,oneof=memory filesystem s3 badger" yaml:"type"`

	// Only the section matching Type is validated.
	Filesystem fs.Config     `mapstructure:"filesystem" validate:"-" yaml:"filesystem"`
	S3         s3.Config     `mapstructure:"s3" validate:"-" yaml:"s3"`
	Badger     badger.Config `mapstructure:"badger" validate:"-" yaml:"badger"`

	// MaxSize rejects larger payloads (e.g. "16Mi"). Zero disables the limit.
	MaxSize bytesize.ByteSize `mapstructure:"max_size" yaml:"max_size"`

	// ImagesOnly rejects payloads that are not decodable images.
	// Default: true
	ImagesOnly *bool `mapstructure:"images_only" yaml:"images_only"`

	// Workers bounds concurrent loads for "assets warm"
	// Default: 8
	Workers int `mapstructure:"workers" validate:"gte=0" yaml:"workers"`
}

// IsImagesOnly returns whether non-image payloads are rejected.
// Defaults to true if not explicitly set.
func (c *AssetsConfig) IsImagesOnly() bool {
	if c.ImagesOnly == nil {
		return true
	}
	return *c.ImagesOnly
}

// SessionConfig controls batch sampling.
type SessionConfig struct {
	// BatchSize is the number of distinct records per batch
	// Default: 3
	BatchSize int `mapstructure:"batch_size" validate:"gte=1" yaml:"batch_size"`

	// Seed makes sampling reproducible. Zero means random.
	Seed uint64 `mapstructure:"seed" yaml:"seed"`

	// FrameInterval is the period of the frame loop polling the prefetch
	// Default: 16ms
	FrameInterval time.Duration `mapstructure:"frame_interval" validate:"gt=0" yaml:"frame_interval"`
}

// Load loads configuration from file, environment variables, and defaults.
//
// Configuration file search order:
//  1. Explicit path via configPath parameter
//  2. $XDG_CONFIG_HOME/hdrive/config.yaml
//  3. ~/.config/hdrive/config.yaml
//
// If no config file is found, defaults are used.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if !found {
		cfg = *GetDefaultConfig()
	}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// MustLoad is Load with a friendlier error when an explicit config file does
// not exist. Used by commands that cannot run on defaults alone.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Create one with:\n"+
				"  hdrive config init --config %s", configPath, configPath)
		}
	}

	return Load(configPath)
}

// SaveConfig writes the configuration to a YAML file, creating parent
// directories as needed.
func SaveConfig(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the s3 section may carry credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: HDRIVE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("HDRIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

var envKeys = []string{
	"logging.level",
	"logging.format",
	"logging.output",
	"telemetry.enabled",
	"telemetry.endpoint",
	"metrics.enabled",
	"api.port",
	"catalog.path",
	"assets.type",
	"assets.filesystem.path",
	"assets.s3.bucket",
	"assets.s3.region",
	"assets.s3.endpoint",
	"assets.s3.key_prefix",
	"assets.badger.path",
	"session.batch_size",
	"session.seed",
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and numbers to bytesize.ByteSize, so
// config files can use sizes like "16Mi" or "500KB".
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings like "30s" to time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			// Raw integers are nanoseconds
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/hdrive, ~/.config/hdrive, or "."
// when the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "hdrive")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "hdrive")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
