package preload

import "context"

// Loader performs the host-specific fetch or decode for a single asset
// identifier. Implementations are supplied by the embedding environment; the
// runner treats the operation as opaque. Load must be safe for concurrent use
// when the loader is driven through RunParallel.
type Loader interface {
	Load(ctx context.Context, id string) error
}

// LoaderFunc adapts an ordinary function to the Loader interface.
type LoaderFunc func(ctx context.Context, id string) error

// Load calls f(ctx, id).
func (f LoaderFunc) Load(ctx context.Context, id string) error {
	return f(ctx, id)
}
