package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/hdrive/cmd/hdrive/cmdutil"
	"github.com/marmos91/hdrive/internal/cli/output"
	pkgconfig "github.com/marmos91/hdrive/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the hdrive configuration file.

Checks for syntax errors, missing required fields, and invalid values.
Use "hdrive catalog validate" to check the catalog itself.

Examples:
  hdrive config validate
  hdrive config validate --config ./hdrive.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := pkgconfig.MustLoad(cmdutil.Flags.ConfigFile)
	if err != nil {
		return err
	}
	printer, err := cmdutil.Printer()
	if err != nil {
		return err
	}

	var warnings []string
	if cfg.Assets.Type == pkgconfig.SourceMemory {
		warnings = append(warnings, "assets.type is memory: every icon renders as a placeholder")
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.SampleRate == 0 {
		warnings = append(warnings, "telemetry is enabled with sample_rate 0")
	}
	if !cfg.API.IsEnabled() && cfg.Metrics.Enabled {
		warnings = append(warnings, "metrics are enabled but the API server that exposes them is disabled")
	}

	printer.Success(fmt.Sprintf("Configuration OK: %s", configPath()))
	for _, w := range warnings {
		printer.Warning("warning: " + w)
	}

	printer.Printf("\n")
	return output.PrintKeyValues(printer.Writer(), [][2]string{
		{"Catalog", cfg.Catalog.Path},
		{"Asset source", cfg.Assets.Type},
		{"Max asset size", cfg.Assets.MaxSize.String()},
		{"Batch size", fmt.Sprint(cfg.Session.BatchSize)},
		{"API port", fmt.Sprint(cfg.API.Port)},
		{"Log level", cfg.Logging.Level},
	})
}
