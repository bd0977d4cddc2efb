package types

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses reported to callers
const (
	RunStatusCompleted = "completed"
	RunStatusError     = "error"
)

// RunReport is the structured outcome of one acquisition run.
type RunReport struct {
	RunID                uuid.UUID         `json:"run_id"`
	TotalFound           int               `json:"total_found"`
	DuplicatesRemoved    int               `json:"duplicates_removed"`
	StoreDuplicates      int               `json:"store_duplicates"`
	SuccessfullyInserted int               `json:"successfully_inserted"`
	SourcesUsed          []string          `json:"sources_used"`
	LeadsPerSource       map[string]int    `json:"leads_per_source"`
	Errors               map[string]string `json:"errors"`
	Status               string            `json:"status"`
	Error                string            `json:"error,omitempty"`
	StartedAt            time.Time         `json:"started_at"`
	CompletedAt          time.Time         `json:"completed_at"`
}

// NewRunReport creates an empty report stamped with a fresh run ID.
func NewRunReport() *RunReport {
	return &RunReport{
		RunID:          uuid.New(),
		LeadsPerSource: make(map[string]int),
		Errors:         make(map[string]string),
		StartedAt:      time.Now().UTC(),
	}
}

// Fail resets all counts and marks the report as a fatal error.
func (r *RunReport) Fail(err error) {
	r.TotalFound = 0
	r.DuplicatesRemoved = 0
	r.StoreDuplicates = 0
	r.SuccessfullyInserted = 0
	r.Status = RunStatusError
	r.Error = err.Error()
	r.CompletedAt = time.Now().UTC()
}

// HasSourceErrors reports whether any source failed during the run.
func (r *RunReport) HasSourceErrors() bool {
	return len(r.Errors) > 0
}
