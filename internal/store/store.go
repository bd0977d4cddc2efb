// Package store defines the deduplication store contract shared by the Postgres
// and in-memory implementations, plus CSV export.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/leadgen/internal/types"
)

// Store persists deduplicated leads.
type Store interface {
	// InsertMany inserts candidates in order, skipping any that match an
	// existing lead. Check and insert run as one serialized unit.
	InsertMany(ctx context.Context, candidates []types.Candidate) (types.InsertResult, error)
	// Query returns matching leads newest first. A limit <= 0 returns all.
	Query(ctx context.Context, filters Filters, limit int) ([]types.Lead, error)
	Stats(ctx context.Context) (*types.Stats, error)
	// CleanupDuplicates collapses existing duplicate groups to their oldest row.
	CleanupDuplicates(ctx context.Context) (types.CleanupResult, error)
	DedupLog(ctx context.Context, limit int) ([]types.DedupLogEntry, error)
	Close()
}

// Filters narrows a lead query. City, country and niche match as
// case-insensitive substrings; source matches exactly. Empty fields are ignored.
type Filters struct {
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	Niche   string `json:"niche,omitempty"`
	Source  string `json:"source,omitempty"`
}

// StoreError is returned when the store cannot complete an operation.
//
//nolint:revive // store.StoreError reads naturally at call sites in other packages
type StoreError struct {
	Op      string
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("store %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("store %s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// EmptyResultError is returned by export when no lead matches the filters.
type EmptyResultError struct {
	Filters Filters
}

func (e *EmptyResultError) Error() string {
	return "no leads found to export"
}

// IsStoreError reports whether err is or wraps a *StoreError.
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}
