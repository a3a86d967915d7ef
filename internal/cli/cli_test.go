package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and captures stdout/stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCmd("1.0.0")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), errOut.String(), err
}

// missingConfig returns a config path that does not exist, so commands run
// with defaults instead of the developer's real ~/.preheat/config.yaml.
func missingConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.yaml")
}

func writeAsset(t *testing.T, dir, name string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o600))
}

func TestWarmCmd(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "a.bin", 10)
	writeAsset(t, dir, "b.bin", 20)

	t.Run("Sequential", func(t *testing.T) {
		stdout, _, err := execute(t,
			"--config", missingConfig(t),
			"warm", "--no-progress", "--root", dir, "a.bin", "b.bin")
		require.NoError(t, err)
		assert.Contains(t, stdout, "warmed 2 of 2 assets")
		assert.Contains(t, stdout, "0 failed")
	})

	t.Run("Parallel", func(t *testing.T) {
		stdout, _, err := execute(t,
			"--config", missingConfig(t),
			"warm", "--no-progress", "--parallel", "--concurrency", "2",
			"--root", dir, "a.bin", "b.bin")
		require.NoError(t, err)
		assert.Contains(t, stdout, "warmed 2 of 2 assets")
	})

	t.Run("FailuresExitNonZero", func(t *testing.T) {
		_, _, err := execute(t,
			"--config", missingConfig(t),
			"warm", "--no-progress", "--root", dir, "a.bin", "missing.bin")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 assets failed")
	})

	t.Run("Manifest", func(t *testing.T) {
		manifestPath := filepath.Join(dir, "assets.yaml")
		require.NoError(t, os.WriteFile(manifestPath, []byte(`
assets:
  - a.bin
  - b.bin
`), 0o600))

		stdout, _, err := execute(t,
			"--config", missingConfig(t),
			"warm", "--no-progress", "--manifest", manifestPath)
		require.NoError(t, err)
		assert.Contains(t, stdout, "warmed 2 of 2 assets")
	})

	t.Run("ManifestVersionGate", func(t *testing.T) {
		manifestPath := filepath.Join(dir, "gated.yaml")
		require.NoError(t, os.WriteFile(manifestPath, []byte(`
min_cli_version: 99.0.0
assets:
  - a.bin
`), 0o600))

		_, _, err := execute(t,
			"--config", missingConfig(t),
			"warm", "--no-progress", "--manifest", manifestPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires a newer preheat version")
	})

	t.Run("NoAssets", func(t *testing.T) {
		_, _, err := execute(t, "--config", missingConfig(t), "warm", "--no-progress")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no assets to warm")
	})

	t.Run("SizeLimit", func(t *testing.T) {
		_, _, err := execute(t,
			"--config", missingConfig(t),
			"warm", "--no-progress", "--root", dir, "--max-size", "15", "a.bin", "b.bin")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 assets failed")
	})
}

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "a.bin", 1)

	t.Run("OK", func(t *testing.T) {
		manifestPath := filepath.Join(dir, "assets.yaml")
		require.NoError(t, os.WriteFile(manifestPath, []byte("assets:\n  - a.bin\n"), 0o600))

		stdout, _, err := execute(t,
			"--config", missingConfig(t),
			"validate", "--manifest", manifestPath)
		require.NoError(t, err)
		assert.Contains(t, stdout, "manifest OK: 1 assets")
	})

	t.Run("MissingAssets", func(t *testing.T) {
		manifestPath := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(manifestPath, []byte("assets:\n  - a.bin\n  - gone.bin\n"), 0o600))

		_, stderr, err := execute(t,
			"--config", missingConfig(t),
			"validate", "--manifest", manifestPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 assets missing")
		assert.Contains(t, stderr, "missing:")
	})

	t.Run("ManifestFlagRequired", func(t *testing.T) {
		_, _, err := execute(t, "--config", missingConfig(t), "validate")
		assert.Error(t, err)
	})
}

func TestConfigCmds(t *testing.T) {
	t.Run("InitAndShow", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "conf", "config.yaml")

		stdout, _, err := execute(t, "--config", path, "config", "init")
		require.NoError(t, err)
		assert.Contains(t, stdout, path)
		assert.FileExists(t, path)

		// A second init without --force refuses to clobber.
		_, _, err = execute(t, "--config", path, "config", "init")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")

		_, _, err = execute(t, "--config", path, "config", "init", "--force")
		require.NoError(t, err)

		stdout, _, err = execute(t, "--config", path, "config", "show")
		require.NoError(t, err)
		assert.Contains(t, stdout, "logging:")
		assert.Contains(t, stdout, "warm:")
	})
}

func TestRootCmd(t *testing.T) {
	root := NewRootCmd("1.2.3")
	assert.Equal(t, "preheat", root.Use)
	assert.Equal(t, "1.2.3", root.Version)
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}
