package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/preheat/internal/config"
	"github.com/rshade/preheat/internal/fsloader"
	"github.com/rshade/preheat/internal/manifest"
	"github.com/rshade/preheat/internal/preload"
	"github.com/rshade/preheat/internal/tui"
	"github.com/rshade/preheat/pkg/version"
)

// warmOptions holds the flag values for the warm command.
type warmOptions struct {
	manifestPath string
	root         string
	parallel     bool
	concurrency  int
	maxSize      int64
	noProgress   bool
}

// NewWarmCmd creates the warm command, which preloads assets so later access
// is instant. Assets come from positional arguments, a manifest, or both.
func NewWarmCmd() *cobra.Command {
	var opts warmOptions

	cmd := &cobra.Command{
		Use:   "warm [assets...]",
		Short: "Preload assets so later access is instant",
		Long: `Reads each asset fully so the OS page cache is warm before first real use.
Already-warmed assets are skipped. Failures are reported but never abort the
run; the command exits non-zero if any asset failed.`,
		Example: `  # Warm specific files
  preheat warm images/logo.png fonts/inter.ttf

  # Warm a manifest in parallel with at most 8 tasks in flight
  preheat warm --manifest assets.yaml --parallel --concurrency 8

  # Skip anything over 50 MB
  preheat warm --manifest assets.yaml --max-size 52428800`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWarm(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.manifestPath, "manifest", "m", "", "path to an asset manifest (YAML)")
	cmd.Flags().StringVar(&opts.root, "root", "", "base directory for relative asset paths")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "load assets concurrently instead of in order")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "max concurrent loads in parallel mode (0 = unlimited)")
	cmd.Flags().Int64Var(&opts.maxSize, "max-size", 0, "per-asset size ceiling in bytes (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable the interactive progress display")

	return cmd
}

// runWarm resolves the asset list, runs the batch, and prints the summary.
func runWarm(cmd *cobra.Command, args []string, opts warmOptions) error {
	ids := append([]string(nil), args...)

	if opts.manifestPath != "" {
		m, err := manifest.Load(opts.manifestPath)
		if err != nil {
			return err
		}
		if verErr := m.CheckVersion(version.GetVersion()); verErr != nil {
			return verErr
		}
		ids = append(ids, m.Paths()...)
	}

	if len(ids) == 0 {
		return errors.New("no assets to warm: pass asset paths or --manifest")
	}

	// Config supplies defaults for flags the user did not set explicitly.
	cfg := config.Global()
	if !cmd.Flags().Changed("parallel") {
		opts.parallel = cfg.Warm.Parallel
	}
	if !cmd.Flags().Changed("concurrency") {
		opts.concurrency = cfg.Warm.Concurrency
	}
	if !cmd.Flags().Changed("max-size") {
		opts.maxSize = cfg.Warm.MaxSizeBytes
	}

	loader := fsloader.New(opts.root,
		fsloader.WithMaxSize(opts.maxSize),
		fsloader.WithLogger(logger),
	)
	registry := preload.NewRegistry()

	var (
		report *preload.Report
		err    error
	)
	if !opts.noProgress && isTerminal(os.Stderr) {
		report, err = runWarmTUI(cmd, registry, loader, ids, opts)
	} else {
		report, err = runWarmPlain(cmd, registry, loader, ids, opts)
	}
	if err != nil {
		return err
	}

	printWarmSummary(cmd, loader, report)
	if !report.OK() {
		return fmt.Errorf("%d of %d assets failed to warm", report.Failed, report.Total)
	}
	return nil
}

// runWarmPlain executes the batch without the interactive display, logging
// progress instead.
func runWarmPlain(
	cmd *cobra.Command,
	registry *preload.Registry,
	loader *fsloader.Loader,
	ids []string,
	opts warmOptions,
) (*preload.Report, error) {
	callbacks := preload.Callbacks{
		OnProgress: func(done, total int) {
			logger.Debug().Int("done", done).Int("total", total).Msg("warm progress")
		},
		OnItemError: func(id string, err error) {
			logger.Warn().Str("asset", id).Err(err).Msg("asset failed to warm")
		},
		OnFailed: func(failed []string) {
			logger.Warn().Strs("assets", failed).Msg("assets failed to warm")
		},
	}

	runner, err := preload.NewRunner(registry, loader,
		preload.WithCallbacks(callbacks),
		preload.WithConcurrencyLimit(opts.concurrency),
		preload.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	if opts.parallel {
		return runner.RunParallel(cmd.Context(), ids)
	}
	return runner.RunSequential(cmd.Context(), ids)
}

// runWarmTUI executes the batch behind a Bubble Tea progress display. The
// display can be dismissed early; the batch itself always runs to
// completion.
func runWarmTUI(
	cmd *cobra.Command,
	registry *preload.Registry,
	loader *fsloader.Loader,
	ids []string,
	opts warmOptions,
) (*preload.Report, error) {
	model := tui.NewWarmModel(len(ids))
	prog := tea.NewProgram(model, tea.WithOutput(cmd.ErrOrStderr()))

	callbacks := preload.Callbacks{
		OnProgress: func(done, total int) {
			prog.Send(tui.ProgressMsg{Done: done, Total: total})
		},
		OnItemError: func(id string, err error) {
			logger.Warn().Str("asset", id).Err(err).Msg("asset failed to warm")
		},
		OnFailed: func(failed []string) {
			logger.Warn().Strs("assets", failed).Msg("assets failed to warm")
		},
	}

	runner, err := preload.NewRunner(registry, loader,
		preload.WithCallbacks(callbacks),
		preload.WithConcurrencyLimit(opts.concurrency),
		preload.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	type runResult struct {
		report *preload.Report
		err    error
	}
	results := make(chan runResult, 1)

	go func() {
		var res runResult
		if opts.parallel {
			res.report, res.err = runner.RunParallel(cmd.Context(), ids)
		} else {
			res.report, res.err = runner.RunSequential(cmd.Context(), ids)
		}
		results <- res
		// A no-op if the user already dismissed the display.
		prog.Send(tui.DoneMsg{Report: res.report, Err: res.err})
	}()

	if _, teaErr := prog.Run(); teaErr != nil {
		return nil, teaErr
	}

	// Wait for the batch even when the display was dismissed early.
	res := <-results
	return res.report, res.err
}

// printWarmSummary writes the human-readable run summary to stdout.
func printWarmSummary(cmd *cobra.Command, loader *fsloader.Loader, report *preload.Report) {
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(cmd.OutOrStdout(),
		"warmed %d of %d assets (%d skipped, %d failed, %d bytes read) in %s\n",
		report.Succeeded,
		report.Total,
		report.Skipped,
		report.Failed,
		loader.BytesRead(),
		report.Elapsed.Round(time.Millisecond),
	)

	logger.Info().
		Str("run_id", report.RunID).
		Int("succeeded", report.Succeeded).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("warm run finished")
}
