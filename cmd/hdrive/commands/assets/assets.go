// Package assets implements the "hdrive assets" commands.
package assets

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for asset maintenance.
var Cmd = &cobra.Command{
	Use:   "assets",
	Short: "Manage item icons",
}

func init() {
	Cmd.AddCommand(warmCmd)
	Cmd.AddCommand(packCmd)
}
