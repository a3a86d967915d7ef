package config

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global zerolog logger instance.
//
//nolint:gochecknoglobals // Logger is intentionally global for application-wide structured logging
var Logger zerolog.Logger

// logFileHandle tracks the current log file for cleanup.
//
//nolint:gochecknoglobals // Tracks the global logger's file handle for proper cleanup
var logFileHandle *os.File

// logMu protects concurrent access to logFileHandle and Logger.
//
//nolint:gochecknoglobals // Guards the global logger state
var logMu sync.RWMutex

// InitLogger initializes the package-level Logger with the given level and
// optional file output. level is parsed into a zerolog level and defaults to
// InfoLevel on parse error. When logFile is non-empty, logs are written to
// the file in addition to the console.
func InitLogger(level, logFile string) error {
	logMu.Lock()
	defer logMu.Unlock()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var writers []io.Writer
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	writers = append(writers, consoleWriter)

	// Close any previously opened log file to prevent file handle leaks.
	closeLogFileLocked()

	if logFile != "" {
		f, fileErr := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if fileErr != nil {
			return fileErr
		}
		logFileHandle = f
		writers = append(writers, f)
	}

	multi := zerolog.MultiLevelWriter(writers...)
	Logger = zerolog.New(multi).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	return nil
}

// CloseLogFile closes the current log file handle, if any, and resets the
// Logger to a console-only writer so subsequent logs are not written to a
// closed file.
func CloseLogFile() {
	logMu.Lock()
	defer logMu.Unlock()
	closeLogFileLocked()
}

// closeLogFileLocked closes the log file and resets the logger. Must be
// called with logMu held.
func closeLogFileLocked() {
	if logFileHandle != nil {
		_ = logFileHandle.Close()
		logFileHandle = nil

		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		Logger = zerolog.New(consoleWriter).
			Level(Logger.GetLevel()).
			With().
			Timestamp().
			Logger()
	}
}

// GetLogger returns the global logger instance.
func GetLogger() zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return Logger
}

// init initializes the package-level default logger to info level with
// console output only, so a logger is available before configuration loads.
//
//nolint:gochecknoinits // intentional: package-level logger must be initialized before use
func init() {
	_ = InitLogger(DefaultLogLevel, "")
}
