package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/preheat/internal/manifest"
	"github.com/rshade/preheat/pkg/version"
)

// NewValidateCmd creates the validate command, which checks an asset
// manifest without loading anything: it parses the YAML, enforces the
// version gate, and verifies every listed asset exists on disk.
func NewValidateCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an asset manifest",
		Long:  "Parses the manifest, checks the minimum version gate, and verifies every listed asset exists on disk. No assets are loaded.",
		Example: `  # Validate a manifest
  preheat validate --manifest assets.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, manifestPath)
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "path to the asset manifest (YAML)")
	_ = cmd.MarkFlagRequired("manifest")

	return cmd
}

// runValidate checks the manifest at path and reports missing assets.
func runValidate(cmd *cobra.Command, path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}
	if verErr := m.CheckVersion(version.GetVersion()); verErr != nil {
		return verErr
	}

	var missing []string
	for _, assetPath := range m.Paths() {
		if _, statErr := os.Stat(assetPath); statErr != nil {
			missing = append(missing, assetPath)
		}
	}

	if len(missing) > 0 {
		for _, assetPath := range missing {
			cmd.PrintErrf("missing: %s\n", assetPath)
		}
		return fmt.Errorf("%d of %d assets missing", len(missing), len(m.Assets))
	}

	cmd.Printf("manifest OK: %d assets\n", len(m.Assets))
	return nil
}
