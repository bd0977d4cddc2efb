//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCriteria_Validate(t *testing.T) {
	tests := []struct {
		name     string
		criteria SearchCriteria
		wantErr  bool
	}{
		{
			name:     "valid criteria",
			criteria: SearchCriteria{City: "Springfield", Country: "USA", Niche: "bakery"},
		},
		{
			name:     "business name is optional",
			criteria: SearchCriteria{City: "Berlin", Country: "Germany", Niche: "cafe", BusinessName: "Einstein"},
		},
		{
			name:     "missing city",
			criteria: SearchCriteria{Country: "USA", Niche: "bakery"},
			wantErr:  true,
		},
		{
			name:     "whitespace-only niche",
			criteria: SearchCriteria{City: "Springfield", Country: "USA", Niche: "   "},
			wantErr:  true,
		},
		{
			name:     "whitespace-only country",
			criteria: SearchCriteria{City: "Springfield", Country: "\t", Niche: "bakery"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSearchCriteria_Trimmed(t *testing.T) {
	c := SearchCriteria{City: "  Springfield ", Country: " USA", Niche: "bakery  ", BusinessName: " Joe's "}
	trimmed := c.Trimmed()

	assert.Equal(t, "Springfield", trimmed.City)
	assert.Equal(t, "USA", trimmed.Country)
	assert.Equal(t, "bakery", trimmed.Niche)
	assert.Equal(t, "Joe's", trimmed.BusinessName)
}

func TestGenerateRequest_Validate(t *testing.T) {
	base := SearchCriteria{City: "Springfield", Country: "USA", Niche: "bakery"}

	req := GenerateRequest{SearchCriteria: base, Limit: 10}
	require.NoError(t, req.Validate())

	req.Limit = 0
	assert.Error(t, req.Validate(), "limit below 1 must be rejected")
}

func TestGenerateRequest_ShouldDedupe(t *testing.T) {
	req := GenerateRequest{}
	assert.True(t, req.ShouldDedupe(), "dedupe must default to true")

	off := false
	req.Dedupe = &off
	assert.False(t, req.ShouldDedupe())
}

func TestRunReport_Fail(t *testing.T) {
	report := NewRunReport()
	report.TotalFound = 7
	report.DuplicatesRemoved = 2
	report.SuccessfullyInserted = 5

	report.Fail(errors.New("store unavailable"))

	assert.Equal(t, RunStatusError, report.Status)
	assert.Equal(t, "store unavailable", report.Error)
	assert.Zero(t, report.TotalFound)
	assert.Zero(t, report.DuplicatesRemoved)
	assert.Zero(t, report.SuccessfullyInserted)
	assert.False(t, report.CompletedAt.IsZero())
}
