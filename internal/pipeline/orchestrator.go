// Package pipeline runs acquisition: fan out to connectors, merge, batch-dedupe
// and persist through the deduplication store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/leadgen/internal/connector"
	"github.com/jonathan/leadgen/internal/dedup"
	"github.com/jonathan/leadgen/internal/observability"
	"github.com/jonathan/leadgen/internal/store"
	"github.com/jonathan/leadgen/internal/types"
)

// DefaultConcurrency is the number of connectors run at once.
const DefaultConcurrency = 4

// State is the orchestrator's lifecycle state.
type State string

// Orchestrator states
const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StatePartial   State = "partial"
	StateError     State = "error"
)

// ErrRunInProgress is returned when GenerateLeads is called while a run is active.
var ErrRunInProgress = errors.New("a lead generation run is already in progress")

// ProgressFunc receives human-readable progress messages.
type ProgressFunc func(message string)

// Request describes one acquisition run.
type Request struct {
	Criteria   types.SearchCriteria
	Limit      int
	Sources    []string
	Dedupe     bool
	OnProgress ProgressFunc
}

// Orchestrator coordinates connectors and the store. At most one run is in
// flight per orchestrator.
type Orchestrator struct {
	registry    *connector.Registry
	store       store.Store
	concurrency int

	mu    sync.Mutex
	state State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency sets the connector fan-out width.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// New creates an orchestrator. A nil store skips persistence.
func New(registry *connector.Registry, s store.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:    registry,
		store:       s,
		concurrency: DefaultConcurrency,
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the state of the current or most recent run.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateRunning {
		return false
	}
	o.state = StateRunning
	return true
}

func (o *Orchestrator) finish(state State) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
}

// sourceResult is the outcome of one connector task.
type sourceResult struct {
	index      int
	source     string
	candidates []types.Candidate
	err        error
}

// GenerateLeads runs every requested source, merges their candidates,
// optionally batch-dedupes them and inserts the survivors. Source failures are
// recorded in the report; only a store failure fails the run. The returned
// error is non-nil only for an invalid request or ErrRunInProgress.
func (o *Orchestrator) GenerateLeads(ctx context.Context, req Request) (*types.RunReport, error) {
	criteria := req.Criteria.Trimmed()
	if err := criteria.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search criteria: %w", err)
	}
	if req.Limit < 1 {
		return nil, fmt.Errorf("invalid limit %d: must be at least 1", req.Limit)
	}
	connectors := o.registry.Resolve(req.Sources)
	if len(connectors) == 0 {
		return nil, errors.New("no lead sources are enabled")
	}
	if !o.begin() {
		return nil, ErrRunInProgress
	}

	start := time.Now()
	report := types.NewRunReport()
	logger := zap.L().With(zap.String("run_id", report.RunID.String()))

	limitPerSource := max(1, req.Limit/len(connectors))
	for _, c := range connectors {
		report.SourcesUsed = append(report.SourcesUsed, c.Name())
	}

	logger.Info("starting lead generation",
		zap.String("city", criteria.City),
		zap.String("country", criteria.Country),
		zap.String("niche", criteria.Niche),
		zap.Strings("sources", report.SourcesUsed),
		zap.Int("limit_per_source", limitPerSource))

	results := o.fanOut(ctx, connectors, criteria, limitPerSource, req.OnProgress)

	var all []types.Candidate
	succeeded := 0
	for _, r := range results {
		report.LeadsPerSource[r.source] = len(r.candidates)
		if r.err != nil {
			report.Errors[r.source] = r.err.Error()
			continue
		}
		succeeded++
		all = append(all, r.candidates...)
	}

	unique := all
	if req.Dedupe {
		unique = dedup.Batch(all)
	}
	report.TotalFound = len(all)
	report.DuplicatesRemoved = len(all) - len(unique)
	observability.LeadsProcessed.WithLabelValues("batch_duplicate").Add(float64(report.DuplicatesRemoved))

	if o.store != nil {
		result, err := o.store.InsertMany(ctx, unique)
		if err != nil {
			logger.Error("failed to persist leads", zap.Error(err))
			report.Fail(err)
			o.complete(StateError, start)
			return report, nil
		}
		report.StoreDuplicates = result.DuplicatesFound
		report.SuccessfullyInserted = result.SuccessfullyInserted
	}

	report.Status = types.RunStatusCompleted
	report.CompletedAt = time.Now().UTC()

	state := StateCompleted
	switch {
	case report.HasSourceErrors() && succeeded > 0:
		state = StatePartial
	case report.HasSourceErrors():
		state = StateError
	}

	logger.Info("lead generation completed",
		zap.String("state", string(state)),
		zap.Int("total_found", report.TotalFound),
		zap.Int("duplicates_removed", report.DuplicatesRemoved),
		zap.Int("inserted", report.SuccessfullyInserted))

	o.complete(state, start)
	return report, nil
}

func (o *Orchestrator) complete(state State, start time.Time) {
	observability.Runs.WithLabelValues(string(state)).Inc()
	observability.RunDuration.Observe(time.Since(start).Seconds())
	o.finish(state)
}

// fanOut runs connectors on a bounded pool and returns their results in
// request order. Tasks never fail the group; each reports through the channel.
// Progress messages are delivered one at a time.
func (o *Orchestrator) fanOut(
	ctx context.Context,
	connectors []connector.Connector,
	criteria types.SearchCriteria,
	limit int,
	progress ProgressFunc,
) []sourceResult {
	ch := make(chan sourceResult, len(connectors))

	if progress != nil {
		var mu sync.Mutex
		inner := progress
		progress = func(message string) {
			mu.Lock()
			defer mu.Unlock()
			inner(message)
		}
	}

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, c := range connectors {
		g.Go(func() error {
			ch <- runSource(ctx, i, c, criteria, limit, progress)
			return nil
		})
	}
	_ = g.Wait()
	close(ch)

	results := make([]sourceResult, len(connectors))
	for r := range ch {
		results[r.index] = r
	}
	return results
}

func runSource(
	ctx context.Context,
	index int,
	c connector.Connector,
	criteria types.SearchCriteria,
	limit int,
	progress ProgressFunc,
) (result sourceResult) {
	result = sourceResult{index: index, source: c.Name()}
	logger := zap.L().With(zap.String("source", c.Name()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("connector panicked", zap.Any("panic", r))
			result.candidates = nil
			result.err = fmt.Errorf("connector %s panicked: %v", c.Name(), r)
			observability.SourceFetches.WithLabelValues(c.Name(), "error").Inc()
		}
	}()

	notify(progress, fmt.Sprintf("Starting %s scraper...", c.Label()))

	candidates, err := c.Fetch(ctx, criteria, limit)
	if err != nil {
		logger.Warn("connector failed", zap.Error(err))
		observability.SourceFetches.WithLabelValues(c.Name(), "error").Inc()
		notify(progress, fmt.Sprintf("Failed %s scraper: %v", c.Label(), err))
		result.err = err
		return result
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	observability.SourceFetches.WithLabelValues(c.Name(), "success").Inc()
	observability.CandidatesFound.WithLabelValues(c.Name()).Add(float64(len(candidates)))
	notify(progress, fmt.Sprintf("Completed %s scraper: %d leads found", c.Label(), len(candidates)))

	result.candidates = candidates
	return result
}

func notify(progress ProgressFunc, message string) {
	if progress != nil {
		progress(message)
	}
}
