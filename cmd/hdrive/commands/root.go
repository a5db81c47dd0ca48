// Package commands implements the hdrive command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/marmos91/hdrive/cmd/hdrive/cmdutil"
	assetscmd "github.com/marmos91/hdrive/cmd/hdrive/commands/assets"
	catalogcmd "github.com/marmos91/hdrive/cmd/hdrive/commands/catalog"
	configcmd "github.com/marmos91/hdrive/cmd/hdrive/commands/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "hdrive",
	Short: "hdrive - pick recipes three at a time",
	Long: `hdrive shows random batches of recipes from a catalog, with their item
icons, and records which one you pick. The next batch is sampled and its
icons loaded in the background while you decide.

Use "hdrive [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Version = Version
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cmdutil.Flags.ConfigFile, "config", "", "config file (default: $XDG_CONFIG_HOME/hdrive/config.yaml)")
	pf.StringVarP(&cmdutil.Flags.Output, "output", "o", "table", "Output format (table|json|yaml)")
	pf.BoolVar(&cmdutil.Flags.NoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(catalogcmd.Cmd)
	rootCmd.AddCommand(assetscmd.Cmd)
	rootCmd.AddCommand(configcmd.Cmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
