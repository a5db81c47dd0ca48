package assets

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marmos91/hdrive/cmd/hdrive/cmdutil"
	"github.com/marmos91/hdrive/internal/cli/output"
	"github.com/marmos91/hdrive/pkg/asset/pack"
	"github.com/marmos91/hdrive/pkg/asset/source/badger"
	"github.com/marmos91/hdrive/pkg/asset/source/fs"
)

var packWatch bool

var packCmd = &cobra.Command{
	Use:   "pack <dir>",
	Short: "Copy an icon directory into the Badger asset store",
	Long: `Copy every file under <dir> into the Badger database at
assets.badger.path, keyed by its path relative to <dir>. Point the
configuration at the database with assets.type: badger to serve from it.

With --watch, keep running and apply file changes as they happen until
interrupted.

Examples:
  hdrive assets pack res/images
  hdrive assets pack res/images --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

func init() {
	packCmd.Flags().BoolVarP(&packWatch, "watch", "w", false, "Keep the store in sync with the directory")
}

func runPack(cmd *cobra.Command, args []string) error {
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
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dir := args[0]
	from, err := fs.New(fs.Config{BasePath: dir})
	if err != nil {
		return err
	}
	defer func() { _ = from.Close() }()

	storeCfg := cfg.Assets.Badger
	storeCfg.ReadOnly = false
	to, err := badger.New(storeCfg)
	if err != nil {
		return err
	}
	defer func() { _ = to.Close() }()

	res, err := pack.Pack(ctx, from, to)
	if err != nil {
		return err
	}

	if printer.Format() != output.FormatTable {
		if err := printer.Print(res); err != nil {
			return err
		}
	} else {
		printer.Success(fmt.Sprintf("Packed %d assets (%s) into %s", res.Assets, humanize.IBytes(res.Bytes), storeCfg.Path))
	}

	if !packWatch {
		return nil
	}
	printer.Printf("Watching %s, press Ctrl+C to stop\n", dir)
	return pack.Watch(ctx, dir, from, to)
}
