// Package cmdutil holds state and helpers shared by the hdrive subcommands.
package cmdutil

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/hdrive/internal/cli/output"
	"github.com/marmos91/hdrive/internal/logger"
	"github.com/marmos91/hdrive/internal/telemetry"
	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/catalog"
	"github.com/marmos91/hdrive/pkg/config"
	promMetrics "github.com/marmos91/hdrive/pkg/metrics/prometheus"
	"github.com/marmos91/hdrive/pkg/sampler"
)

// GlobalFlags are the persistent root flags.
type GlobalFlags struct {
	ConfigFile string
	Output     string
	NoColor    bool
}

// Flags is filled in by the root command before any subcommand runs.
var Flags GlobalFlags

// Version is the build version, reported to telemetry.
var Version = "dev"

// LoadConfig loads the configuration named by --config and initializes the
// logger from it.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.MustLoad(Flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// InitTelemetry starts tracing and profiling as configured. The returned
// function flushes and stops both.
func InitTelemetry(ctx context.Context, cfg *config.Config) (func(context.Context), error) {
	traceShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "hdrive",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	profilingStop, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "hdrive",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		_ = traceShutdown(ctx)
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}

	if cfg.Telemetry.Enabled {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if cfg.Telemetry.Profiling.Enabled {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint)
	}

	return func(ctx context.Context) {
		if err := profilingStop(); err != nil {
			logger.Error("Profiling shutdown error", logger.Err(err))
		}
		if err := traceShutdown(ctx); err != nil {
			logger.Error("Telemetry shutdown error", logger.Err(err))
		}
	}, nil
}

// Runtime is the catalog, asset source and cache a command works with.
type Runtime struct {
	Config  *config.Config
	Catalog *catalog.Catalog
	Source  asset.Source
	Cache   *asset.Cache
}

// OpenRuntime loads the catalog and opens the configured asset source.
// Callers must Close the runtime.
func OpenRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("Catalog loaded", logger.KeyPath, cfg.Catalog.Path, logger.KeyRecords, cat.Len())

	src, err := config.CreateAssetSource(ctx, cfg.Assets)
	if err != nil {
		return nil, err
	}

	cache := asset.NewCache(src, cat, asset.Options{
		Decode:     cfg.Assets.DecodeOptions(),
		Metrics:    promMetrics.NewAssetMetrics(),
		SourceType: cfg.Assets.Type,
	})

	return &Runtime{Config: cfg, Catalog: cat, Source: src, Cache: cache}, nil
}

// Sampler returns a sampler seeded from configuration, or a random one.
func (r *Runtime) Sampler() *sampler.Sampler {
	if seed := r.Config.Session.Seed; seed != 0 {
		return sampler.NewSeeded(seed)
	}
	return sampler.New()
}

// Close closes the asset source.
func (r *Runtime) Close() error {
	if err := r.Source.Close(); err != nil && !errors.Is(err, asset.ErrSourceClosed) {
		return fmt.Errorf("failed to close asset source: %w", err)
	}
	return nil
}

// Printer returns a stdout printer honoring --output and --no-color.
func Printer() (*output.Printer, error) {
	format, err := output.ParseFormat(Flags.Output)
	if err != nil {
		return nil, err
	}
	p := output.StdoutPrinter(format)
	if Flags.NoColor {
		p = output.NewPrinter(p.Writer(), format, false)
	}
	return p, nil
}
