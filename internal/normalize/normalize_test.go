package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/leadgen/internal/types"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"already clean", "Joe's Bakery", "Joe's Bakery"},
		{"surrounding whitespace", "  Joe's Bakery \n", "Joe's Bakery"},
		{"internal runs", "Joe's \t\n  Bakery", "Joe's Bakery"},
		{"only whitespace", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"no digits", "Call us today", ""},
		{"parenthesized", "Call (555) 123-4567 now", "(555) 123-4567"},
		{"dotted", "Phone: 555.123.4567", "555.123.4567"},
		{"country code", "+1 555 123 4567", "+1 555 123 4567"},
		{"international fallback", "Tel +44 20 79", "+44 20 79"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractPhone(tt.input))
		})
	}
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "", ExtractEmail(""))
	assert.Equal(t, "", ExtractEmail("no address here"))
	assert.Equal(t, "info@joes-bakery.com", ExtractEmail("Write to info@joes-bakery.com for orders"))
	assert.Equal(t, "first@a.io", ExtractEmail("first@a.io, second@b.io"))
}

func TestValidate(t *testing.T) {
	valid := types.Candidate{
		Name:    "Joe's Bakery",
		Address: "12 Main St",
		City:    "Springfield",
		Country: "USA",
		Niche:   "bakery",
	}

	tests := []struct {
		name    string
		mutate  func(c *types.Candidate)
		wantErr bool
	}{
		{"valid", func(_ *types.Candidate) {}, false},
		{"three character name", func(c *types.Candidate) { c.Name = "Joe" }, false},
		{"two character name", func(c *types.Candidate) { c.Name = "Jo" }, true},
		{"padded short name", func(c *types.Candidate) { c.Name = "  Jo  " }, true},
		{"five character address", func(c *types.Candidate) { c.Address = "1 Ave" }, true},
		{"six character address", func(c *types.Candidate) { c.Address = "1 Main" }, false},
		{"empty city", func(c *types.Candidate) { c.City = " " }, true},
		{"empty country", func(c *types.Candidate) { c.Country = "" }, true},
		{"empty niche", func(c *types.Candidate) { c.Niche = "\t" }, true},
		{"optional fields empty", func(c *types.Candidate) { c.Phone, c.Email, c.Website = "", "", "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := Validate(c)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, IsValid(c))
			} else {
				assert.NoError(t, err)
				assert.True(t, IsValid(c))
			}
		})
	}
}

func TestRefineNiche(t *testing.T) {
	tests := []struct {
		name       string
		niche      string
		categories []string
		expected   string
	}{
		{"no categories", "bakery", nil, "bakery"},
		{"categories already mention niche", "bakery", []string{"Cafe", "Bakery & Pastry"}, "bakery"},
		{"no overlapping word", "bakery", []string{"Coffee", "Tea"}, "bakery"},
		{"single word overlap", "coffee shop", []string{"Bagels", "Specialty Coffee"}, "Specialty Coffee"},
		{"first overlap wins", "pet grooming", []string{"Dog Grooming", "Pet Supplies"}, "Dog Grooming"},
		{"case insensitive match", "Italian restaurant", []string{"Pizza", "ITALIAN"}, "ITALIAN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RefineNiche(tt.niche, tt.categories))
		})
	}
}

func TestLooksLikeAddress(t *testing.T) {
	assert.True(t, LooksLikeAddress("742 Evergreen Terrace Ave"))
	assert.True(t, LooksLikeAddress("12 Main St., Springfield"))
	assert.True(t, LooksLikeAddress("Rodeo Drive"))
	assert.False(t, LooksLikeAddress("Open now · 4.5 stars"))
	assert.False(t, LooksLikeAddress("Stadium Tours"), "partial words must not match")
}

func TestFallbackAddress(t *testing.T) {
	assert.Equal(t, "Springfield, USA", FallbackAddress("Springfield", "USA"))
}

func TestAppendCategory(t *testing.T) {
	var categories []string
	categories = AppendCategory(categories, "  Bakeries ")
	categories = AppendCategory(categories, "Bakeries")
	categories = AppendCategory(categories, "ok")
	categories = AppendCategory(categories, "Cafes")

	assert.Equal(t, []string{"Bakeries", "Cafes"}, categories)
}
