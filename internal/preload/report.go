package preload

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Outcome classifies the result of a single item within a batch run.
type Outcome int

const (
	// OutcomeSuccess means the loader completed and the item was registered.
	OutcomeSuccess Outcome = iota

	// OutcomeSkipped means the item was already registered; the loader was
	// not invoked.
	OutcomeSkipped

	// OutcomeFailed means the loader returned an error; the item was not
	// registered.
	OutcomeFailed
)

// String returns a short lowercase label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ItemResult records the outcome of one item in a batch run.
type ItemResult struct {
	// ID is the asset identifier.
	ID string

	// Outcome classifies what happened to the item.
	Outcome Outcome

	// Err is the loader failure cause. Nil unless Outcome is OutcomeFailed.
	Err error
}

// Report is the structured result of one batch run. Sequential runs append
// items in input order; parallel runs append in completion order.
type Report struct {
	// RunID is a ULID identifying this run, for log correlation.
	RunID string

	// Total is the number of identifiers submitted to the run.
	Total int

	// Succeeded counts items whose load completed successfully.
	Succeeded int

	// Skipped counts items that were already registered before the run.
	Skipped int

	// Failed counts items whose load returned an error.
	Failed int

	// Items holds the per-item outcomes.
	Items []ItemResult

	// StartedAt is when the run began.
	StartedAt time.Time

	// Elapsed is the total run duration.
	Elapsed time.Duration
}

// newReport creates a report for a run over total identifiers.
func newReport(total int) *Report {
	return &Report{
		RunID:     ulid.Make().String(),
		Total:     total,
		Items:     make([]ItemResult, 0, total),
		StartedAt: time.Now(),
	}
}

// add appends an item result and updates the aggregate counters.
func (r *Report) add(item ItemResult) {
	r.Items = append(r.Items, item)
	switch item.Outcome {
	case OutcomeSuccess:
		r.Succeeded++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// Attempted returns the number of loader invocations made during the run.
func (r *Report) Attempted() int {
	return r.Succeeded + r.Failed
}

// OK reports whether every item either succeeded or was skipped.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// FailedIDs returns the identifiers that failed, in the order their results
// were recorded.
func (r *Report) FailedIDs() []string {
	if r.Failed == 0 {
		return nil
	}
	ids := make([]string, 0, r.Failed)
	for _, item := range r.Items {
		if item.Outcome == OutcomeFailed {
			ids = append(ids, item.ID)
		}
	}
	return ids
}
