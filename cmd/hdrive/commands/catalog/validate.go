package catalog

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/hdrive/cmd/hdrive/cmdutil"
	"github.com/marmos91/hdrive/internal/cli/output"
	"github.com/marmos91/hdrive/pkg/asset"
)

var validateAssets bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the catalog against the batch size and asset source",
	Long: `Parse the catalog, check that a batch of session.batch_size distinct
records can be drawn from it, and optionally load every icon to report the
ones the asset source cannot provide.

Missing icons are not an error: they render as placeholders.

Examples:
  hdrive catalog validate
  hdrive catalog validate --assets`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateAssets, "assets", false, "Also load every icon and report failures")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	printer, err := cmdutil.Printer()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := cmdutil.OpenRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if err := rt.Catalog.CheckBatchSize(cfg.Session.BatchSize); err != nil {
		return fmt.Errorf("catalog has %d records, batch size is %d: %w", rt.Catalog.Len(), cfg.Session.BatchSize, err)
	}

	keys := rt.Catalog.Keys()
	pairs := [][2]string{
		{"Catalog", cfg.Catalog.Path},
		{"Records", fmt.Sprint(rt.Catalog.Len())},
		{"Asset keys", fmt.Sprint(len(keys))},
		{"Batch size", fmt.Sprint(cfg.Session.BatchSize)},
	}

	if !validateAssets {
		printer.Success("Catalog OK")
		return output.PrintKeyValues(printer.Writer(), pairs)
	}

	loaded, failed, err := rt.Cache.Warm(ctx, keys, cfg.Assets.Workers)
	if err != nil {
		return err
	}
	pairs = append(pairs, [2]string{"Loaded", fmt.Sprint(loaded)}, [2]string{"Failed", fmt.Sprint(failed)})

	if failed == 0 {
		printer.Success("Catalog OK")
		return output.PrintKeyValues(printer.Writer(), pairs)
	}

	printer.Warning(fmt.Sprintf("%d icons could not be loaded", failed))
	if err := output.PrintKeyValues(printer.Writer(), pairs); err != nil {
		return err
	}

	td := output.NewTableData("Key", "Locator")
	states := rt.Cache.States(keys)
	for _, k := range keys {
		if states[k] == asset.Failed {
			td.AddRow(string(k), rt.Catalog.Locator(k))
		}
	}
	printer.Printf("\n")
	return output.PrintTable(printer.Writer(), td)
}
