package dedup

import (
	"crypto/md5" //nolint:gosec // test fixture
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/leadgen/internal/types"
)

func candidate(name, address, email, phone string) types.Candidate {
	return types.Candidate{
		Name:    name,
		Address: address,
		City:    "Springfield",
		Country: "USA",
		Niche:   "bakery",
		Email:   email,
		Phone:   phone,
		Source:  "Test Scraper",
	}
}

func TestHash(t *testing.T) {
	sum := md5.Sum([]byte("joe's bakery")) //nolint:gosec // test fixture
	expected := hex.EncodeToString(sum[:])

	assert.Equal(t, expected, Hash("Joe's Bakery"))
	assert.Equal(t, expected, Hash("  JOE'S BAKERY \n"))
	assert.Equal(t, "", Hash(""))
	assert.Equal(t, "", Hash("   "), "whitespace-only text hashes to empty")
}

func TestIdentity_Matches(t *testing.T) {
	base := IdentityOf(candidate("Joe's Bakery", "1 Main St", "joe@bakery.com", "555-0100"))

	tests := []struct {
		name     string
		other    types.Candidate
		expected bool
	}{
		{"same name and address", candidate("joe's bakery", "1 MAIN ST", "", ""), true},
		{"same email and phone", candidate("Other", "2 Elm St", "joe@bakery.com", "555-0100"), true},
		{"same email only", candidate("Other", "2 Elm St", "JOE@bakery.com", ""), true},
		{"same phone only", candidate("Other", "2 Elm St", "", "555-0100"), false},
		{"nothing shared", candidate("Other", "2 Elm St", "x@y.com", "555-0199"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, base.Matches(IdentityOf(tt.other)))
		})
	}
}

func TestIdentity_EmptyHashesNeverMatch(t *testing.T) {
	a := IdentityOf(candidate("Alpha Bakery", "1 Main St", "", ""))
	b := IdentityOf(candidate("Beta Bakery", "2 Elm St", "", ""))

	assert.False(t, a.Matches(b), "missing email and phone are not an identity")
	assert.False(t, Identity{}.Matches(Identity{}))
}

func TestIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		c        types.Candidate
		expected []string
	}{
		{"all fields", candidate(" Joe's ", "1 Main St", "Joe@X.com", " 555 "), []string{"joe's|1 main st", "joe@x.com|555"}},
		{"email only", candidate("Joe's", "1 Main St", "joe@x.com", ""), []string{"joe's|1 main st", "email|joe@x.com"}},
		{"phone only", candidate("Joe's", "1 Main St", "", "555"), []string{"joe's|1 main st", "phone|555"}},
		{"no contact", candidate("Joe's", "1 Main St", "", ""), []string{"joe's|1 main st"}},
		{"nothing", types.Candidate{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Identifiers(tt.c))
		})
	}
}

func TestBatch(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Batch(nil))
	})

	t.Run("same name and address collapses", func(t *testing.T) {
		kept := Batch([]types.Candidate{
			candidate("Joe's Bakery", "1 Main St", "", ""),
			candidate("JOE'S BAKERY", " 1 main st ", "", ""),
		})
		require.Len(t, kept, 1)
		assert.Equal(t, "Joe's Bakery", kept[0].Name, "first encountered wins")
	})

	t.Run("phone-only duplicates with different names", func(t *testing.T) {
		kept := Batch([]types.Candidate{
			candidate("Alpha Bakery", "1 Main St", "", "555-0100"),
			candidate("Beta Bakery", "9 Oak Ave", "", "555-0100"),
		})
		require.Len(t, kept, 1)
		assert.Equal(t, "Alpha Bakery", kept[0].Name)
	})

	t.Run("email and phone pair", func(t *testing.T) {
		kept := Batch([]types.Candidate{
			candidate("Alpha", "1 Main St", "a@x.com", "1"),
			candidate("Beta", "2 Main St", "A@X.com", "1"),
			candidate("Gamma", "3 Main St", "a@x.com", "2"),
		})
		assert.Len(t, kept, 2, "a different phone makes a different pair")
	})

	t.Run("no contact info is not a shared identity", func(t *testing.T) {
		kept := Batch([]types.Candidate{
			candidate("Alpha", "1 Main St", "", ""),
			candidate("Beta", "2 Main St", "", ""),
		})
		assert.Len(t, kept, 2)
	})

	t.Run("candidates without identifiers are kept", func(t *testing.T) {
		kept := Batch([]types.Candidate{{}, {}})
		assert.Len(t, kept, 2)
	})

	t.Run("order decides which duplicate survives", func(t *testing.T) {
		a := candidate("Alpha", "1 Main St", "", "555")
		b := candidate("Beta", "2 Main St", "", "555")

		assert.Equal(t, "Alpha", Batch([]types.Candidate{a, b})[0].Name)
		assert.Equal(t, "Beta", Batch([]types.Candidate{b, a})[0].Name)
	})
}
