// Package dedup provides identity hashing and the in-memory batch deduplicator.
package dedup

import (
	"crypto/md5" //nolint:gosec // identity hash, not used for security
	"encoding/hex"
	"strings"

	"github.com/jonathan/leadgen/internal/types"
)

// Hash returns the hex MD5 of the lowercased, trimmed text.
// Empty (or whitespace-only) text hashes to "".
func Hash(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return ""
	}
	sum := md5.Sum([]byte(normalized)) //nolint:gosec // identity hash
	return hex.EncodeToString(sum[:])
}

// Identity holds the four per-field identity hashes of a lead.
type Identity struct {
	NameHash    string
	AddressHash string
	EmailHash   string
	PhoneHash   string
}

// IdentityOf hashes a candidate's identifying fields.
func IdentityOf(c types.Candidate) Identity {
	return Identity{
		NameHash:    Hash(c.Name),
		AddressHash: Hash(c.Address),
		EmailHash:   Hash(c.Email),
		PhoneHash:   Hash(c.Phone),
	}
}

// Matches reports whether two identities denote the same lead under store rules:
// same name and address, same email and phone (both non-empty), or same non-empty email.
func (id Identity) Matches(other Identity) bool {
	if (id.NameHash != "" || id.AddressHash != "") &&
		id.NameHash == other.NameHash && id.AddressHash == other.AddressHash {
		return true
	}
	if id.EmailHash != "" && id.PhoneHash != "" &&
		id.EmailHash == other.EmailHash && id.PhoneHash == other.PhoneHash {
		return true
	}
	return id.EmailHash != "" && id.EmailHash == other.EmailHash
}
