package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/preheat/internal/config"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRootCmd creates the root Cobra command for the preheat CLI.
// It wires up configuration loading, logging, and the warm, validate, and
// config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "preheat",
		Short:   "Warm asset caches ahead of first use",
		Long:    "Preheat reads assets up front so their first real use does not stall.\nIt tracks what has already been warmed in a run and skips it on repeat passes.",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			config.CloseLogFile()
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "path to config file (default ~/.preheat/config.yaml)")
	cmd.AddCommand(NewWarmCmd(), NewValidateCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Warm specific assets
  preheat warm images/logo.png fonts/inter.ttf

  # Warm everything listed in a manifest, in parallel
  preheat warm --manifest assets.yaml --parallel --concurrency 8

  # Check a manifest without loading anything
  preheat validate --manifest assets.yaml

  # Initialize configuration
  preheat config init`

// setupLogging loads configuration and initializes the global logger based
// on config file, environment, and CLI flags.
func setupLogging(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if validateErr := cfg.Validate(); validateErr != nil {
		return validateErr
	}

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		cfg.Logging.Level = "debug"
	}

	if initErr := config.InitLogger(cfg.Logging.Level, cfg.Logging.File); initErr != nil {
		return initErr
	}
	config.SetGlobal(cfg)

	logger = config.GetLogger().With().Str("component", "cli").Logger()
	logger.Debug().Str("command", cmd.Name()).Msg("command started")
	return nil
}
