package connector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/leadgen/internal/fetch"
	"github.com/jonathan/leadgen/internal/types"
)

// Test source constants
const (
	TestName  = "test"
	TestLabel = "Test Scraper"
	testDelay = 100 * time.Millisecond
	// testLeadCount is how many leads the test source produces at most.
	testLeadCount = 5
)

// Test is a deterministic source that never touches the network.
// Lead i (1-based) is "Test Business i" at "<99+i> Main St, <city>, <country>".
type Test struct {
	delay fetch.Delay
}

// NewTest creates the deterministic test connector.
func NewTest(opts Options) *Test {
	delay := fetch.NewDelay(testDelay)
	if opts.Delay != nil {
		delay = *opts.Delay
	}
	return &Test{delay: delay}
}

func (t *Test) Name() string  { return TestName }
func (t *Test) Label() string { return TestLabel }

// Fetch returns min(5, limit) mock leads.
func (t *Test) Fetch(ctx context.Context, criteria types.SearchCriteria, limit int) ([]types.Candidate, error) {
	criteria = criteria.Trimmed()
	zap.L().Info("generating mock leads",
		zap.String("source", TestName),
		zap.String("niche", criteria.Niche),
		zap.String("city", criteria.City),
		zap.String("country", criteria.Country))

	if err := t.delay.Wait(ctx, nil); err != nil {
		return nil, err
	}

	col := newCollector(criteria, TestLabel, limit)
	for i := 1; i <= testLeadCount && !col.full(); i++ {
		col.add(listing{
			name:    fmt.Sprintf("Test Business %d", i),
			address: fmt.Sprintf("%d Main St, %s, %s", 99+i, criteria.City, criteria.Country),
			phone:   fmt.Sprintf("+1-555-%04d", 999+i),
			email:   fmt.Sprintf("contact%d@testbusiness%d.com", i, i),
			website: fmt.Sprintf("https://testbusiness%d.com", i),
			niche:   criteria.Niche,
		})
	}
	return col.candidates(), nil
}
