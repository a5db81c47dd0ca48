package config

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/hdrive/cmd/hdrive/cmdutil"
	"github.com/marmos91/hdrive/internal/cli/output"
	pkgconfig "github.com/marmos91/hdrive/pkg/config"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective hdrive configuration, with defaults and
environment overrides applied.

Outputs YAML unless --output json is given.

Examples:
  hdrive config show
  hdrive config show -o json
  HDRIVE_ASSETS_TYPE=memory hdrive config show`,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := pkgconfig.MustLoad(cmdutil.Flags.ConfigFile)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(cmdutil.Flags.Output)
	if err != nil {
		return err
	}

	if format == output.FormatJSON {
		return output.PrintJSON(os.Stdout, cfg)
	}
	return output.PrintYAML(os.Stdout, cfg)
}
