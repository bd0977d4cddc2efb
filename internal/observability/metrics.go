package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SourceRequests counts outbound connector requests by source and outcome
	// (ok, transient, error).
	SourceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadgen_source_requests_total",
			Help: "Total number of outbound requests made by connectors",
		},
		[]string{"source", "outcome"},
	)

	// SourceRequestDuration tracks outbound request latency in seconds.
	SourceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadgen_source_request_duration_seconds",
			Help:    "Outbound connector request latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"source"},
	)

	// SourceFetches counts connector Fetch calls by source and status (success, error).
	SourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadgen_source_fetches_total",
			Help: "Total number of connector fetches",
		},
		[]string{"source", "status"},
	)

	// CandidatesFound counts validated candidates returned per source.
	CandidatesFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadgen_candidates_found_total",
			Help: "Total number of validated candidates returned by connectors",
		},
		[]string{"source"},
	)

	// Runs counts orchestrator runs by final state.
	Runs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadgen_runs_total",
			Help: "Total number of acquisition runs",
		},
		[]string{"state"},
	)

	// RunDuration tracks end-to-end run duration in seconds.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leadgen_run_duration_seconds",
			Help:    "Acquisition run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	// LeadsProcessed counts leads handled by the store by outcome
	// (inserted, duplicate, batch_duplicate, removed).
	LeadsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadgen_leads_processed_total",
			Help: "Total number of leads handled by deduplication",
		},
		[]string{"outcome"},
	)
)
