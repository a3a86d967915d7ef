package preload

import (
	"sort"
	"sync"
)

// Registry tracks which asset identifiers have been loaded successfully and
// serializes batch runs with a single-flight guard. A Registry is explicitly
// constructed and owned by the caller; one registry defines one logical
// preload scope. Thread-safe for concurrent access.
type Registry struct {
	// mu protects seen and running.
	mu sync.RWMutex

	// seen holds identifiers whose load previously completed successfully.
	seen map[string]struct{}

	// running is true while a batch run is in flight on this registry.
	running bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		seen: make(map[string]struct{}),
	}
}

// Has reports whether id has already been loaded successfully.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.seen[id]
	return ok
}

// HasAll reports whether every identifier in ids has been loaded successfully.
// An empty slice returns true.
func (r *Registry) HasAll(ids []string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range ids {
		if _, ok := r.seen[id]; !ok {
			return false
		}
	}
	return true
}

// Count returns the number of loaded identifiers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.seen)
}

// Snapshot returns the loaded identifiers sorted lexicographically.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.seen))
	for id := range r.seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear empties the registry. It does not touch the run guard, and is safe to
// call while a batch is in flight: items still loading re-register on
// completion, so membership becomes eventually consistent.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seen = make(map[string]struct{})
}

// Busy reports whether a batch run is currently in flight.
func (r *Registry) Busy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.running
}

// tryAcquire attempts to take the run guard. It returns false if another run
// already holds it.
func (r *Registry) tryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return false
	}
	r.running = true
	return true
}

// release returns the run guard. Callers must pair every successful
// tryAcquire with exactly one release, on every exit path.
func (r *Registry) release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
}

// markLoaded records a successful load of id.
func (r *Registry) markLoaded(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seen[id] = struct{}{}
}
