package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/hdrive/cmd/hdrive/cmdutil"
	"github.com/marmos91/hdrive/pkg/batch"
)

var sampleSize int

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Sample and load one batch",
	Long: `Sample one batch of distinct recipes, load their icons and print it.

Examples:
  hdrive sample
  hdrive sample --size 5 -o json`,
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().IntVarP(&sampleSize, "size", "k", 0, "Records per batch (default: session.batch_size)")
}

func runSample(cmd *cobra.Command, args []string) error {
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

	k := sampleSize
	if k == 0 {
		k = cfg.Session.BatchSize
	}
	if err := rt.Catalog.CheckBatchSize(k); err != nil {
		return err
	}

	idx, err := rt.Sampler().SampleDistinct(rt.Catalog.Len(), k)
	if err != nil {
		return err
	}
	b, err := batch.NewLoader(rt.Catalog, rt.Cache).Load(ctx, idx)
	if err != nil {
		return fmt.Errorf("failed to load batch: %w", err)
	}

	return printer.Print(cmdutil.NewBatchReport(b, 0, rt.Cache, -1))
}
