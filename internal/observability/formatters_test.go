package observability

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/leadgen/internal/types"
)

func TestPrintRunReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := types.NewRunReport()
	report.RunID = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	report.Status = types.RunStatusCompleted
	report.TotalFound = 7
	report.DuplicatesRemoved = 1
	report.StoreDuplicates = 2
	report.SuccessfullyInserted = 4
	report.LeadsPerSource = map[string]int{"yelp": 0, "test": 7}
	report.Errors = map[string]string{"yelp": "status 503"}

	p.PrintRunReport(report)
	output := buf.String()

	assert.Contains(t, output, "LEAD GENERATION REPORT")
	assert.Contains(t, output, "7c9e6679-7425-40de-944b-e07fc1f90ae7")
	assert.Contains(t, output, "Inserted:   4")
	assert.Contains(t, output, "• test: 7")
	assert.Contains(t, output, "• yelp: 0 (failed: status 503)")
	assert.Less(t, strings.Index(output, "test: 7"), strings.Index(output, "yelp: 0"))
}

func TestPrintRunReport_Failed(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := types.NewRunReport()
	report.Fail(errors.New("store unavailable"))

	p.PrintRunReport(report)

	assert.Contains(t, buf.String(), "Status:     error")
	assert.Contains(t, buf.String(), "Error:      store unavailable")
}

func TestPrintRunReport_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRunReport(nil)
	assert.Empty(t, buf.String())
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	cities := make([]types.Bucket, 0, 7)
	for i := 1; i <= 7; i++ {
		cities = append(cities, types.Bucket{Key: fmt.Sprintf("City %d", i), Count: 10 - i})
	}

	p.PrintStats(&types.Stats{
		TotalLeads:    12,
		RecentLeads:   3,
		LeadsBySource: map[string]int{"Yelp": 5, "Google Maps": 7},
		LeadsByCity:   cities,
		LeadsByNiche:  []types.Bucket{{Key: "bakery", Count: 12}},
	})
	output := buf.String()

	assert.Contains(t, output, "LEAD STORE STATISTICS")
	assert.Contains(t, output, "Total leads:  12")
	assert.Contains(t, output, "Last 7 days:  3")
	assert.Contains(t, output, "• Google Maps: 7")
	assert.Contains(t, output, "1. City 1 (9)")
	assert.Contains(t, output, "... and 2 more")
	assert.NotContains(t, output, "City 6")
	assert.Contains(t, output, "1. bakery (12)")
}

func TestPrintLeads(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	leads := []types.Lead{
		{ID: 2, Candidate: types.Candidate{Name: "Joe's Bakery", Address: "1 Main St", Phone: "555-0100", Source: "Yelp"}},
		{ID: 1, Candidate: types.Candidate{Name: "Rosa's Bread", Address: "2 Elm St", Source: "Test Scraper"}},
	}

	p.PrintLeads(leads, 1)
	output := buf.String()

	assert.Contains(t, output, "Showing 1 of 2 leads")
	assert.Contains(t, output, "#2  Joe's Bakery")
	assert.Contains(t, output, "555-0100")
	assert.Contains(t, output, "[Yelp]")
	assert.Contains(t, output, "... and 1 more leads")
	assert.NotContains(t, output, "Rosa's Bread")
}

func TestPrintLeads_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintLeads(nil, 0)
	assert.Contains(t, buf.String(), "No leads found")
}

func TestPrintCleanup(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCleanup(&types.CleanupResult{DuplicatesFound: 2, DuplicatesRemoved: 3})
	assert.Contains(t, buf.String(), "Duplicate groups: 2")
	assert.Contains(t, buf.String(), "Rows removed:     3")

	buf.Reset()
	p.PrintCleanup(&types.CleanupResult{})
	assert.Contains(t, buf.String(), "NO DUPLICATES FOUND")
}

func TestPrintDedupLog(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDedupLog([]types.DedupLogEntry{{
		ID:                1,
		Operation:         types.OperationInsertWithDedup,
		TotalProcessed:    5,
		DuplicatesFound:   1,
		DuplicatesRemoved: 1,
		FinalCount:        4,
		CreatedAt:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}})
	output := buf.String()

	assert.Contains(t, output, "2024-05-01 12:00:00  insert_with_dedup")
	assert.Contains(t, output, "total=5 found=1 removed=1 final=4")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
	assert.Contains(t, buf.String(), "...")
}
