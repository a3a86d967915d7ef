// Package manifest parses YAML asset manifests for warm-up runs.
//
// A manifest lists the asset paths to preload, an optional base directory,
// and an optional minimum CLI version so teams can gate manifests that rely
// on newer behavior:
//
//	min_cli_version: 0.1.0
//	root: ./assets
//	assets:
//	  - images/logo.png
//	  - fonts/inter.ttf
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Common manifest errors.
var (
	ErrNoAssets            = errors.New("manifest: no assets listed")
	ErrDuplicateAsset      = errors.New("manifest: duplicate asset entry")
	ErrEmptyAsset          = errors.New("manifest: empty asset entry")
	ErrIncompatibleVersion = errors.New("manifest: requires a newer preheat version")
)

// Manifest describes one set of assets to preload.
type Manifest struct {
	// MinCLIVersion optionally gates the manifest to a minimum preheat
	// version (semver).
	MinCLIVersion string `yaml:"min_cli_version,omitempty"`

	// Root is an optional base directory prepended to relative asset paths.
	// When the manifest is loaded from disk, a relative Root resolves
	// against the manifest file's directory and an absent Root defaults to
	// that directory.
	Root string `yaml:"root,omitempty"`

	// Assets lists the asset paths to preload, in order.
	Assets []string `yaml:"assets"`
}

// Load reads and validates a manifest file. A relative Root is resolved
// against the manifest's directory; an absent Root defaults to the
// manifest's directory, so entries stay valid wherever the CLI runs from.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	switch {
	case m.Root == "":
		m.Root = filepath.Dir(path)
	case !filepath.IsAbs(m.Root):
		m.Root = filepath.Join(filepath.Dir(path), m.Root)
	}
	return m, nil
}

// Parse decodes and validates a manifest from r. Unknown fields are
// rejected so typos surface instead of being silently dropped.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks structural constraints: at least one asset, no empty
// entries, no duplicates, and a parseable min_cli_version when set.
func (m *Manifest) Validate() error {
	if len(m.Assets) == 0 {
		return ErrNoAssets
	}

	seen := make(map[string]struct{}, len(m.Assets))
	for i, asset := range m.Assets {
		if asset == "" {
			return fmt.Errorf("%w: index %d", ErrEmptyAsset, i)
		}
		if _, dup := seen[asset]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateAsset, asset)
		}
		seen[asset] = struct{}{}
	}

	if m.MinCLIVersion != "" {
		if _, err := semver.NewVersion(m.MinCLIVersion); err != nil {
			return fmt.Errorf("manifest: invalid min_cli_version %q: %w", m.MinCLIVersion, err)
		}
	}
	return nil
}

// CheckVersion verifies that the running preheat version satisfies the
// manifest's min_cli_version gate. A manifest without a gate always passes.
func (m *Manifest) CheckVersion(current string) error {
	if m.MinCLIVersion == "" {
		return nil
	}

	minVer, err := semver.NewVersion(m.MinCLIVersion)
	if err != nil {
		return fmt.Errorf("manifest: invalid min_cli_version %q: %w", m.MinCLIVersion, err)
	}
	cur, err := semver.NewVersion(current)
	if err != nil {
		return fmt.Errorf("manifest: cannot parse running version %q: %w", current, err)
	}

	if cur.LessThan(minVer) {
		return fmt.Errorf("%w: need >= %s, running %s", ErrIncompatibleVersion, minVer, cur)
	}
	return nil
}

// Paths returns the asset paths with Root applied to relative entries.
func (m *Manifest) Paths() []string {
	if m.Root == "" {
		return append([]string(nil), m.Assets...)
	}

	paths := make([]string, 0, len(m.Assets))
	for _, asset := range m.Assets {
		if filepath.IsAbs(asset) {
			paths = append(paths, asset)
			continue
		}
		paths = append(paths, filepath.Join(m.Root, asset))
	}
	return paths
}
