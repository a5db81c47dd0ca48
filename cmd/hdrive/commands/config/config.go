// Package config implements configuration management subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/hdrive/cmd/hdrive/cmdutil"
	pkgconfig "github.com/marmos91/hdrive/pkg/config"
)

// Cmd is the config subcommand.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage hdrive configuration files.

Subcommands:
  init      Create a configuration file
  validate  Validate configuration file
  show      Display current configuration
  schema    Generate JSON schema for IDE/validation`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(schemaCmd)
}

// configPath returns --config, or the default location.
func configPath() string {
	if p := cmdutil.Flags.ConfigFile; p != "" {
		return p
	}
	return pkgconfig.GetDefaultConfigPath()
}
