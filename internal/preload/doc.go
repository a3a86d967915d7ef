// Package preload implements deduplicated batch preloading of assets.
//
// A Registry remembers which asset identifiers have already been loaded
// successfully, so repeated warm-up runs skip work that is already done. A
// Runner executes one batch of identifiers against an injected Loader, either
// strictly in order (RunSequential) or with one concurrent task per item
// (RunParallel), reporting progress and failures through optional callbacks
// and returning a structured Report.
//
// Key properties:
//   - An identifier enters the registry only after its load succeeds.
//   - At most one batch runs per registry at a time; a second concurrent run
//     is dropped with ErrRunInFlight and never touches the loader.
//   - Loader failures never abort a batch and never surface in the run's
//     returned error. They are recorded in the Report and reported through
//     the error callbacks.
package preload
