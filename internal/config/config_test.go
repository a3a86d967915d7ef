package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cfg := New()
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
	assert.False(t, cfg.Warm.Parallel)
	assert.Equal(t, DefaultConcurrency, cfg.Warm.Concurrency)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("MissingFileUsesDefaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	})

	t.Run("ReadsFile", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
warm:
  parallel: true
  concurrency: 4
  max_size_bytes: 1048576
`), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.True(t, cfg.Warm.Parallel)
		assert.Equal(t, 4, cfg.Warm.Concurrency)
		assert.Equal(t, int64(1048576), cfg.Warm.MaxSizeBytes)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "trace")
		t.Setenv(EnvLogFile, "/tmp/preheat-test.log")

		cfg, err := Load(filepath.Join(dir, "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "trace", cfg.Logging.Level)
		assert.Equal(t, "/tmp/preheat-test.log", cfg.Logging.File)
	})

	t.Run("MalformedFile", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("logging: [not a map"), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := New()
	cfg.Warm.Parallel = true
	cfg.Warm.Concurrency = 8
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Warm, loaded.Warm)
	assert.Equal(t, cfg.Logging.Level, loaded.Logging.Level)
}

func TestValidate(t *testing.T) {
	cfg := New()
	cfg.Warm.Concurrency = -1
	assert.Error(t, cfg.Validate())

	cfg = New()
	cfg.Warm.MaxSizeBytes = -1
	assert.Error(t, cfg.Validate())
}

func TestGlobal(t *testing.T) {
	// Unset global falls back to defaults.
	SetGlobal(nil)
	assert.Equal(t, DefaultLogLevel, Global().Logging.Level)

	cfg := New()
	cfg.Warm.Concurrency = 3
	SetGlobal(cfg)
	assert.Equal(t, 3, Global().Warm.Concurrency)

	t.Cleanup(func() { SetGlobal(nil) })
}

func TestInitLogger(t *testing.T) {
	t.Run("InvalidLevelFallsBack", func(t *testing.T) {
		require.NoError(t, InitLogger("not-a-level", ""))
	})

	t.Run("FileOutput", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "preheat.log")
		require.NoError(t, InitLogger("debug", path))

		logger := GetLogger()
		logger.Info().Msg("hello")
		CloseLogFile()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello")
	})
}
