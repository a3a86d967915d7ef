// Package fsloader implements the preload Loader over the local filesystem.
//
// Warming an asset means reading it fully so the OS page cache is hot before
// the asset is first used for real. The loader also sniffs the content type
// of each asset for diagnostics and can enforce a per-file size ceiling to
// keep a single oversized asset from dominating a warm-up run.
package fsloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// sniffLen is the number of leading bytes used for content-type detection.
const sniffLen = 512

// ErrTooLarge is returned when an asset exceeds the configured size ceiling.
var ErrTooLarge = errors.New("fsloader: asset exceeds size limit")

// Loader reads assets from the local filesystem. Safe for concurrent use.
type Loader struct {
	// root is prepended to relative asset paths. Empty means paths are used
	// as given.
	root string

	// maxSize is the per-file size ceiling in bytes. Zero means unlimited.
	maxSize int64

	logger zerolog.Logger

	// bytesRead accumulates the total bytes warmed across all loads.
	bytesRead atomic.Int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithMaxSize sets the per-file size ceiling in bytes. Zero disables the
// check.
func WithMaxSize(n int64) Option {
	return func(l *Loader) {
		l.maxSize = n
	}
}

// WithLogger sets the diagnostics logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a loader. Relative asset paths resolve under root; pass an
// empty root to use paths as given.
func New(root string, opts ...Option) *Loader {
	l := &Loader{
		root:   root,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the asset identified by id fully into the page cache. It
// returns an error if the file cannot be opened or read, or if it exceeds
// the configured size ceiling.
func (l *Loader) Load(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := l.resolve(id)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open asset %s: %w", id, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat asset %s: %w", id, err)
	}
	if info.IsDir() {
		return fmt.Errorf("asset %s is a directory", id)
	}
	if l.maxSize > 0 && info.Size() > l.maxSize {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, id, info.Size(), l.maxSize)
	}

	// Sniff the content type from the leading bytes, then drain the rest.
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("failed to read asset %s: %w", id, err)
	}
	contentType := http.DetectContentType(head[:n])

	rest, err := io.Copy(io.Discard, f)
	if err != nil {
		return fmt.Errorf("failed to read asset %s: %w", id, err)
	}

	size := int64(n) + rest
	l.bytesRead.Add(size)
	l.logger.Debug().
		Str("asset", id).
		Str("content_type", contentType).
		Int64("bytes", size).
		Msg("asset warmed")

	return nil
}

// BytesRead returns the total bytes warmed by this loader so far.
func (l *Loader) BytesRead() int64 {
	return l.bytesRead.Load()
}

// resolve maps an asset identifier to a filesystem path.
func (l *Loader) resolve(id string) string {
	if l.root == "" || filepath.IsAbs(id) {
		return id
	}
	return filepath.Join(l.root, id)
}
