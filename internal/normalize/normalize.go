// Package normalize provides the text-cleaning and validation rules shared by all connectors.
package normalize

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/leadgen/internal/types"
)

// phonePatterns are tried in order; the first match wins.
var phonePatterns = []*regexp.Regexp{
	// North American numbers: +1 (555) 123-4567, 555.123.4567, ...
	regexp.MustCompile(`\+?1?[-.\s]?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})`),
	// Generic international groups: +44 20 7946 0958, +1-555-1000, ...
	regexp.MustCompile(`\+?[0-9]{1,4}[-.\s]?[0-9]{1,4}[-.\s]?[0-9]{1,4}[-.\s]?[0-9]{1,4}`),
}

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// addressWords mark text that reads like a street address.
var addressWords = map[string]bool{
	"street": true, "st": true,
	"avenue": true, "ave": true,
	"road": true, "rd": true,
	"drive": true, "dr": true,
	"boulevard": true, "blvd": true,
	"lane": true, "ln": true,
}

var wordSplit = regexp.MustCompile(`[^a-z0-9]+`)

// candidateRules mirrors the acceptance rules for a candidate after trimming.
type candidateRules struct {
	Name    string `validate:"min=3"`
	Address string `validate:"min=6"`
	City    string `validate:"required"`
	Country string `validate:"required"`
	Niche   string `validate:"required"`
}

var validate = validator.New()

// CleanText trims text and collapses internal whitespace runs to single spaces.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

// ExtractPhone returns the first phone-like substring of text, or "".
func ExtractPhone(text string) string {
	if text == "" {
		return ""
	}
	for _, pattern := range phonePatterns {
		if match := pattern.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return ""
}

// ExtractEmail returns the first e-mail address found in text, or "".
func ExtractEmail(text string) string {
	if text == "" {
		return ""
	}
	return emailPattern.FindString(text)
}

// Validate reports whether a candidate is complete enough to keep.
// Name must be longer than 2 characters, address longer than 5, and
// city, country and niche must be non-empty after trimming.
func Validate(c types.Candidate) error {
	rules := candidateRules{
		Name:    strings.TrimSpace(c.Name),
		Address: strings.TrimSpace(c.Address),
		City:    strings.TrimSpace(c.City),
		Country: strings.TrimSpace(c.Country),
		Niche:   strings.TrimSpace(c.Niche),
	}
	return validate.Struct(&rules)
}

// IsValid is the boolean form of Validate.
func IsValid(c types.Candidate) bool {
	return Validate(c) == nil
}

// FallbackAddress is used when a listing carries no usable address.
func FallbackAddress(city, country string) string {
	return city + ", " + country
}

// LooksLikeAddress reports whether text contains a street-type word.
func LooksLikeAddress(text string) bool {
	for _, word := range wordSplit.Split(strings.ToLower(text), -1) {
		if addressWords[word] {
			return true
		}
	}
	return false
}

// RefineNiche replaces the requested niche with a discovered category when the
// categories do not already mention the niche and one of them shares a word with it.
// The first overlapping category wins; otherwise the requested niche is returned unchanged.
func RefineNiche(niche string, categories []string) string {
	if len(categories) == 0 {
		return niche
	}

	lowerNiche := strings.ToLower(niche)
	if strings.Contains(strings.ToLower(strings.Join(categories, " ")), lowerNiche) {
		return niche
	}

	words := strings.Fields(lowerNiche)
	for _, category := range categories {
		lowerCategory := strings.ToLower(category)
		for _, word := range words {
			if strings.Contains(lowerCategory, word) {
				return category
			}
		}
	}
	return niche
}

// AppendCategory adds a cleaned category tag unless it is too short or already present.
func AppendCategory(categories []string, text string) []string {
	text = CleanText(text)
	if len(text) <= 2 {
		return categories
	}
	for _, existing := range categories {
		if existing == text {
			return categories
		}
	}
	return append(categories, text)
}
