// Package catalog implements the "hdrive catalog" commands.
package catalog

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for catalog inspection.
var Cmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the recipe catalog",
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(validateCmd)
}
