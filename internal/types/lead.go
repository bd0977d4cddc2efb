// Package types provides type definitions for structured data used throughout the lead engine.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Candidate is a not-yet-persisted lead produced by a connector for the current run.
// Optional fields (phone, email, website) are empty strings when unknown.
type Candidate struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Niche     string    `json:"niche"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Website   string    `json:"website,omitempty"`
	Source    string    `json:"source"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Lead is a persisted, deduplicated lead record.
type Lead struct {
	ID int64 `json:"id"`
	Candidate

	NameHash    string    `json:"name_hash"`
	AddressHash string    `json:"address_hash"`
	EmailHash   string    `json:"email_hash"`
	PhoneHash   string    `json:"phone_hash"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Dedup log operation types
const (
	OperationInsertWithDedup   = "insert_with_dedup"
	OperationCleanupDuplicates = "cleanup_duplicates"
)

// DedupLogEntry is an append-only audit record of one store maintenance or insert batch.
type DedupLogEntry struct {
	ID                int64     `json:"id"`
	Operation         string    `json:"operation_type"`
	TotalProcessed    int       `json:"total_leads"`
	DuplicatesFound   int       `json:"duplicates_found"`
	DuplicatesRemoved int       `json:"duplicates_removed"`
	FinalCount        int       `json:"final_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// InsertResult summarizes one InsertMany call.
type InsertResult struct {
	TotalProcessed       int `json:"total_processed"`
	DuplicatesFound      int `json:"duplicates_found"`
	SuccessfullyInserted int `json:"successfully_inserted"`
}

// CleanupResult summarizes one CleanupDuplicates call.
type CleanupResult struct {
	DuplicatesFound   int `json:"duplicates_found"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// Stats is the aggregate view of the lead store.
type Stats struct {
	TotalLeads    int            `json:"total_leads"`
	LeadsBySource map[string]int `json:"leads_by_source"`
	LeadsByCity   []Bucket       `json:"leads_by_city"`  // top 10
	LeadsByNiche  []Bucket       `json:"leads_by_niche"` // top 10
	RecentLeads   int            `json:"recent_leads"`   // created in the last 7 days
}

// Bucket is one (key, count) pair of a ranked aggregate.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}
