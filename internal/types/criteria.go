package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// SearchCriteria is the search tuple handed to every connector.
type SearchCriteria struct {
	City         string `json:"city" validate:"required"`
	Country      string `json:"country" validate:"required"`
	Niche        string `json:"niche" validate:"required"`
	BusinessName string `json:"business_name,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (c SearchCriteria) Trimmed() SearchCriteria {
	return SearchCriteria{
		City:         strings.TrimSpace(c.City),
		Country:      strings.TrimSpace(c.Country),
		Niche:        strings.TrimSpace(c.Niche),
		BusinessName: strings.TrimSpace(c.BusinessName),
	}
}

// Validate checks that city, country and niche are non-empty after trimming.
func (c SearchCriteria) Validate() error {
	trimmed := c.Trimmed()
	return validator.New().Struct(&trimmed)
}

// GenerateRequest is the inbound request for one acquisition run.
type GenerateRequest struct {
	SearchCriteria
	Limit   int      `json:"limit" validate:"min=1"`
	Sources []string `json:"sources,omitempty"`
	Dedupe  *bool    `json:"dedupe,omitempty"`
}

// ShouldDedupe reports whether in-batch deduplication is requested (default true).
func (r *GenerateRequest) ShouldDedupe() bool {
	return r.Dedupe == nil || *r.Dedupe
}

// Validate validates the criteria and the limit.
func (r *GenerateRequest) Validate() error {
	if err := r.SearchCriteria.Validate(); err != nil {
		return err
	}
	return validator.New().Var(r.Limit, "min=1")
}
