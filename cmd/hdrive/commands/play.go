package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/hdrive/cmd/hdrive/cmdutil"
	"github.com/marmos91/hdrive/internal/cli/output"
	"github.com/marmos91/hdrive/internal/cli/prompt"
	"github.com/marmos91/hdrive/internal/logger"
	"github.com/marmos91/hdrive/pkg/prefetch"
	"github.com/marmos91/hdrive/pkg/session"
)

var playRounds int

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Pick recipes interactively in the terminal",
	Long: `Show a batch of recipes, pick one, and move on to the next batch.

Icons that could not be loaded are shown as "-". Press Ctrl+C or choose
"Quit" to stop; the picks of the session are printed on exit.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&playRounds, "rounds", 0, "Stop after this many picks (0 = unlimited)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	printer, err := cmdutil.Printer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := cmdutil.InitTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	rt, err := cmdutil.OpenRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	printer.Printf("Loading...\n")
	sess, err := session.New(ctx, rt.Catalog, rt.Cache, rt.Sampler(), session.Options{
		BatchSize: cfg.Session.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = sess.Close(closeCtx)
	}()

	driver := session.NewDriver(sess, cfg.Session.FrameInterval)
	go func() { _ = driver.Run(ctx) }()

	var p prompt.Prompter
	for playRounds == 0 || len(sess.Picks()) < playRounds {
		done, err := playRound(ctx, sess, rt, printer, &p)
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	return printPicks(printer, sess.Picks())
}

// playRound shows one batch and confirms the user's choice. It returns true
// when the user wants to stop.
func playRound(ctx context.Context, sess *session.Session, rt *cmdutil.Runtime, printer *output.Printer, p *prompt.Prompter) (bool, error) {
	view := sess.View()
	report := cmdutil.NewBatchReport(view.Batch, view.Generation, rt.Cache, view.Selected)

	printer.Printf("\nBatch %d\n", view.Generation)
	if err := output.PrintTable(printer.Writer(), report); err != nil {
		return false, err
	}

	choices := make([]prompt.Choice, 0, len(report.Records)+1)
	for _, rec := range report.Records {
		choices = append(choices, prompt.Choice{Label: rec.Summary()})
	}
	choices = append(choices, prompt.Choice{Label: "Quit"})

	i, err := p.Select("Pick a recipe", choices)
	if err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			return true, nil
		}
		return false, err
	}
	if i == len(report.Records) {
		return true, nil
	}

	if err := sess.Select(i); err != nil {
		return false, err
	}
	if sess.Prefetch() != prefetch.Ready {
		printer.Printf("Loading next batch...\n")
	}

	pick, err := sess.Confirm(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return true, nil
		}
		printer.Warning(err.Error())
		logger.Warn("Confirm failed", logger.Err(err))
		return false, nil
	}
	printer.Success("Picked " + pick.Record.Name)
	return false, nil
}

func printPicks(printer *output.Printer, picks []session.Pick) error {
	if len(picks) == 0 {
		return nil
	}
	if printer.Format() != output.FormatTable {
		return printer.Print(picks)
	}

	td := output.NewTableData("Batch", "Recipe", "Product", "At")
	for _, p := range picks {
		td.AddRow(strconv.FormatUint(p.Generation, 10), p.Record.Name, string(p.Record.Product), p.At.Format("15:04:05"))
	}
	printer.Printf("\nPicks\n")
	return printer.Print(td)
}
