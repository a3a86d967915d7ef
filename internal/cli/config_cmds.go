package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/preheat/internal/config"
)

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd())
	return cmd
}

// NewConfigInitCmd creates the config init command, which writes a config
// file with default values.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long:  "Creates a new configuration file with default values at ~/.preheat/config.yaml, or at the path given with --config.",
		Example: `  # Create the default configuration
  preheat config init

  # Overwrite an existing configuration
  preheat config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}

// runConfigInit writes the default configuration, refusing to clobber an
// existing file unless force is set.
func runConfigInit(cmd *cobra.Command, force bool) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}

	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	cfg := config.New()
	if err := cfg.Save(path); err != nil {
		return err
	}

	cmd.Printf("wrote %s\n", path)
	return nil
}

// NewConfigShowCmd creates the config show command, which prints the
// effective configuration after file, environment, and flag overrides.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(config.Global())
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			cmd.Print(string(data))
			return nil
		},
	}
}
