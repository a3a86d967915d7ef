package preload

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Common runner errors.
var (
	// ErrRunInFlight is returned when a run is requested while another run
	// on the same registry is still in progress. The new run is dropped: the
	// loader is never invoked and no callback fires. The in-flight run is
	// unaffected.
	ErrRunInFlight = errors.New("preload: another run is in flight")

	// ErrNilRegistry is returned by NewRunner when registry is nil.
	ErrNilRegistry = errors.New("preload: registry cannot be nil")

	// ErrNilLoader is returned by NewRunner when loader is nil.
	ErrNilLoader = errors.New("preload: loader cannot be nil")
)

// Callbacks carries the optional notification hooks for a batch run. All
// fields may be nil. Callbacks are invoked synchronously from the run; in
// parallel mode OnProgress fires from concurrently running tasks, serialized
// by the runner so progress values are strictly increasing.
type Callbacks struct {
	// OnProgress receives (done, total) as items complete. In sequential
	// mode it fires only for successful and already-registered items, so it
	// may not reach total when failures occur. In parallel mode it fires
	// exactly once per item and the final call is always (total, total).
	OnProgress func(done, total int)

	// OnComplete fires once after every item has been processed, regardless
	// of failures.
	OnComplete func()

	// OnItemError fires per failing item in sequential mode with the
	// identifier and cause.
	OnItemError func(id string, err error)

	// OnFailed fires once in parallel mode, after all tasks finish, with the
	// full list of failed identifiers. It does not fire when nothing failed.
	OnFailed func(ids []string)
}

// Runner executes preload batches against a Registry using an injected
// Loader. A Runner is cheap and may be created per batch; the registry is
// what carries state between runs.
type Runner struct {
	registry  *Registry
	loader    Loader
	callbacks Callbacks
	limit     int
	logger    zerolog.Logger

	// flight collapses concurrent loads of the same identifier within one
	// parallel run into a single loader call.
	flight singleflight.Group
}

// Option configures a Runner.
type Option func(*Runner)

// WithCallbacks sets the notification hooks for the runner.
func WithCallbacks(cb Callbacks) Option {
	return func(r *Runner) {
		r.callbacks = cb
	}
}

// WithConcurrencyLimit bounds the number of simultaneously running tasks in
// RunParallel. Zero or negative means unlimited: every task starts at once.
func WithConcurrencyLimit(n int) Option {
	return func(r *Runner) {
		r.limit = n
	}
}

// WithLogger sets the logger used for diagnostics. Defaults to a no-op
// logger so the package stays quiet when embedded.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner bound to the given registry and loader.
func NewRunner(registry *Registry, loader Loader, opts ...Option) (*Runner, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if loader == nil {
		return nil, ErrNilLoader
	}

	r := &Runner{
		registry: registry,
		loader:   loader,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RunSequential processes ids strictly in order: item n+1 never begins
// loading before item n's outcome is resolved. Already-registered items are
// skipped and counted as progress. Loader failures are recorded in the
// report and surfaced through OnItemError; they never abort the run and
// never appear in the returned error.
//
// If another run is in flight on the registry, RunSequential returns
// (nil, ErrRunInFlight) without invoking the loader or any callback.
//
// A cancelled context stops scheduling of not-yet-started items; the
// remainder are recorded as failures with the context error as cause. A
// loader call already in progress is not interrupted.
func (r *Runner) RunSequential(ctx context.Context, ids []string) (*Report, error) {
	if !r.registry.tryAcquire() {
		return nil, ErrRunInFlight
	}
	defer r.registry.release()

	report := newReport(len(ids))
	total := len(ids)
	r.logger.Debug().Str("run_id", report.RunID).Int("total", total).Msg("sequential run started")

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			for _, rest := range ids[i:] {
				report.add(ItemResult{ID: rest, Outcome: OutcomeFailed, Err: err})
				r.itemError(rest, err)
			}
			break
		}

		if r.registry.Has(id) {
			report.add(ItemResult{ID: id, Outcome: OutcomeSkipped})
			r.progress(i+1, total)
			continue
		}

		if err := r.loader.Load(ctx, id); err != nil {
			// Failures advance the loop position but do not fire OnProgress.
			report.add(ItemResult{ID: id, Outcome: OutcomeFailed, Err: err})
			r.itemError(id, err)
			continue
		}

		r.registry.markLoaded(id)
		report.add(ItemResult{ID: id, Outcome: OutcomeSuccess})
		r.progress(i+1, total)
	}

	report.Elapsed = time.Since(report.StartedAt)
	r.logRunDone(report)
	if r.callbacks.OnComplete != nil {
		r.callbacks.OnComplete()
	}
	return report, nil
}

// RunParallel launches one task per identifier. Tasks complete in no
// particular order, but OnProgress fires exactly once per item and its final
// call is always (total, total) once every task resolves, regardless of
// individual outcomes. Failed identifiers are reported once, as a list,
// through OnFailed after all tasks finish.
//
// Duplicate identifiers within one batch share a single loader call; each
// occurrence still counts toward progress.
//
// The busy-guard, cancellation, and error semantics match RunSequential.
func (r *Runner) RunParallel(ctx context.Context, ids []string) (*Report, error) {
	if !r.registry.tryAcquire() {
		return nil, ErrRunInFlight
	}
	defer r.registry.release()

	report := newReport(len(ids))
	total := len(ids)
	r.logger.Debug().Str("run_id", report.RunID).Int("total", total).Msg("parallel run started")

	var (
		mu     sync.Mutex
		done   int
		failed []string
	)

	// finish records one item's outcome and emits progress under the lock,
	// keeping the counter monotonic across concurrently finishing tasks.
	finish := func(item ItemResult) {
		mu.Lock()
		defer mu.Unlock()

		report.add(item)
		if item.Outcome == OutcomeFailed {
			failed = append(failed, item.ID)
		}
		done++
		r.progress(done, total)
	}

	g, gctx := errgroup.WithContext(ctx)
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}

	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				finish(ItemResult{ID: id, Outcome: OutcomeFailed, Err: err})
				return nil
			}

			if r.registry.Has(id) {
				finish(ItemResult{ID: id, Outcome: OutcomeSkipped})
				return nil
			}

			_, err, _ := r.flight.Do(id, func() (interface{}, error) {
				return nil, r.loader.Load(gctx, id)
			})
			if err != nil {
				finish(ItemResult{ID: id, Outcome: OutcomeFailed, Err: err})
				return nil
			}

			r.registry.markLoaded(id)
			finish(ItemResult{ID: id, Outcome: OutcomeSuccess})
			return nil
		})
	}

	// Tasks never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	report.Elapsed = time.Since(report.StartedAt)
	r.logRunDone(report)

	if len(failed) > 0 {
		if r.callbacks.OnFailed != nil {
			r.callbacks.OnFailed(failed)
		} else {
			r.logger.Debug().Str("run_id", report.RunID).Strs("assets", failed).Msg("preload failures")
		}
	}
	if r.callbacks.OnComplete != nil {
		r.callbacks.OnComplete()
	}
	return report, nil
}

// progress invokes the progress callback when one is set.
func (r *Runner) progress(done, total int) {
	if r.callbacks.OnProgress != nil {
		r.callbacks.OnProgress(done, total)
	}
}

// itemError surfaces a sequential-mode failure. Without a handler the only
// trace is a debug log entry.
func (r *Runner) itemError(id string, err error) {
	if r.callbacks.OnItemError != nil {
		r.callbacks.OnItemError(id, err)
		return
	}
	r.logger.Debug().Str("asset", id).Err(err).Msg("preload failed")
}

// logRunDone emits the run summary diagnostic.
func (r *Runner) logRunDone(report *Report) {
	r.logger.Debug().
		Str("run_id", report.RunID).
		Int("succeeded", report.Succeeded).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Dur("elapsed", report.Elapsed).
		Msg("run finished")
}
