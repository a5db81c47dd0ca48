package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/hdrive/cmd/hdrive/cmdutil"
	"github.com/marmos91/hdrive/internal/logger"
	"github.com/marmos91/hdrive/pkg/api"
	"github.com/marmos91/hdrive/pkg/metrics"
	promMetrics "github.com/marmos91/hdrive/pkg/metrics/prometheus"
	"github.com/marmos91/hdrive/pkg/session"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the selection session over HTTP",
	Long: `Start a session and expose it through the HTTP API.

The first batch is loaded before the server starts listening. The next batch
is prepared in the background; POST /api/v1/batch/confirm waits for it only
if it is not ready yet.

Examples:
  # Serve with the default config
  hdrive serve

  # Override the port and log level
  HDRIVE_LOGGING_LEVEL=DEBUG hdrive serve --port 9000`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (overrides api.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	if !cfg.API.IsEnabled() {
		return errors.New("api is disabled in the configuration")
	}
	if servePort != 0 {
		cfg.API.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := cmdutil.InitTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics enabled", logger.KeyPath, "/metrics")
	}

	rt, err := cmdutil.OpenRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("Close failed", logger.Err(err))
		}
	}()

	sess, err := session.New(ctx, rt.Catalog, rt.Cache, rt.Sampler(), session.Options{
		BatchSize:       cfg.Session.BatchSize,
		PrefetchMetrics: promMetrics.NewPrefetchMetrics(),
	})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	server := api.NewServer(cfg.API, api.Deps{Session: sess, Cache: rt.Cache, Source: rt.Source})
	driver := session.NewDriver(sess, cfg.Session.FrameInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(gctx) })
	g.Go(func() error {
		if err := driver.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	err = g.Wait()

	logger.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if cerr := sess.Close(closeCtx); cerr != nil {
		logger.Warn("Pending batch did not finish before shutdown", logger.Err(cerr))
	}
	logger.Info("Session ended", "picks", len(sess.Picks()), logger.KeyGeneration, sess.Generation())
	return err
}
