// Package config loads preheat configuration and owns the global logger.
//
// Configuration lives at ~/.preheat/config.yaml and can be overridden per
// invocation with environment variables (PREHEAT_LOG_LEVEL, PREHEAT_LOG_FILE)
// and CLI flags. Flags win over environment, environment wins over file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file is absent or a field is unset.
const (
	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultConcurrency is the parallel warm-up task limit (0 = unlimited).
	DefaultConcurrency = 0
)

// Environment variable overrides.
const (
	// EnvLogLevel overrides logging.level.
	EnvLogLevel = "PREHEAT_LOG_LEVEL"

	// EnvLogFile overrides logging.file.
	EnvLogFile = "PREHEAT_LOG_FILE"
)

// Config is the root configuration structure.
type Config struct {
	// Logging configures the zerolog output.
	Logging LoggingConfig `yaml:"logging"`

	// Warm configures default warm-up behavior.
	Warm WarmConfig `yaml:"warm"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is the zerolog level name (trace, debug, info, warn, error).
	Level string `yaml:"level"`

	// File, when set, duplicates log output to the given file.
	File string `yaml:"file,omitempty"`
}

// WarmConfig holds defaults for the warm command.
type WarmConfig struct {
	// Parallel selects parallel mode by default.
	Parallel bool `yaml:"parallel"`

	// Concurrency bounds parallel tasks. Zero means unlimited.
	Concurrency int `yaml:"concurrency"`

	// MaxSizeBytes is the per-asset size ceiling. Zero disables the check.
	MaxSizeBytes int64 `yaml:"max_size_bytes"`
}

// globalConfig holds the process-wide configuration loaded at startup.
var (
	globalConfig   *Config      //nolint:gochecknoglobals // Set once at startup, read by commands
	globalConfigMu sync.RWMutex //nolint:gochecknoglobals // Protects globalConfig
)

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
		Warm: WarmConfig{
			Concurrency: DefaultConcurrency,
		},
	}
}

// Dir returns the preheat configuration directory (~/.preheat).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".preheat"), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path, applies environment overrides, and
// returns the result. A missing file is not an error; defaults are used.
// An empty path means the default location.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, unmarshalErr)
		}
	case os.IsNotExist(err):
		// Missing config is fine; defaults apply.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	return cfg, nil
}

// applyEnv overlays environment variable overrides.
func (c *Config) applyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv(EnvLogFile); file != "" {
		c.Logging.File = file
	}
}

// Validate checks configuration constraints.
func (c *Config) Validate() error {
	if c.Warm.Concurrency < 0 {
		return errors.New("warm.concurrency must be >= 0")
	}
	if c.Warm.MaxSizeBytes < 0 {
		return errors.New("warm.max_size_bytes must be >= 0")
	}
	return nil
}

// Save writes the configuration to path as YAML, creating the parent
// directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o750); mkdirErr != nil {
		return fmt.Errorf("failed to create config directory: %w", mkdirErr)
	}
	if writeErr := os.WriteFile(path, data, 0o600); writeErr != nil {
		return fmt.Errorf("failed to write config %s: %w", path, writeErr)
	}
	return nil
}

// SetGlobal stores the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// Global returns the process-wide configuration, falling back to defaults
// when none has been loaded yet.
func Global() *Config {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()

	if globalConfig == nil {
		return New()
	}
	return globalConfig
}
