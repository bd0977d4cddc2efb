package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/leadgen/internal/dedup"
	"github.com/jonathan/leadgen/internal/observability"
	"github.com/jonathan/leadgen/internal/types"
)

const (
	topBuckets   = 10
	recentWindow = 7 * 24 * time.Hour
)

// Memory is an in-process Store. It applies the same duplicate rules and
// unique constraints as the Postgres store and is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	leads  []types.Lead
	log    []types.DedupLogEntry
	nextID int64
	logID  int64
	now    func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{now: func() time.Time { return time.Now().UTC() }}
}

var _ Store = (*Memory)(nil)

// InsertMany implements Store.
func (m *Memory) InsertMany(ctx context.Context, candidates []types.Candidate) (types.InsertResult, error) {
	if len(candidates) == 0 {
		return types.InsertResult{}, nil
	}
	if err := ctx.Err(); err != nil {
		return types.InsertResult{}, &StoreError{Op: "insert", Message: "context done", Cause: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := types.InsertResult{TotalProcessed: len(candidates)}
	for _, c := range candidates {
		identity := dedup.IdentityOf(c)
		if m.exists(identity) {
			result.DuplicatesFound++
			continue
		}

		m.nextID++
		now := m.now()
		m.leads = append(m.leads, types.Lead{
			ID:          m.nextID,
			Candidate:   c,
			NameHash:    identity.NameHash,
			AddressHash: identity.AddressHash,
			EmailHash:   identity.EmailHash,
			PhoneHash:   identity.PhoneHash,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		result.SuccessfullyInserted++
	}

	m.appendLog(types.OperationInsertWithDedup, result.TotalProcessed,
		result.DuplicatesFound, result.DuplicatesFound, result.SuccessfullyInserted)

	observability.LeadsProcessed.WithLabelValues("inserted").Add(float64(result.SuccessfullyInserted))
	observability.LeadsProcessed.WithLabelValues("duplicate").Add(float64(result.DuplicatesFound))

	return result, nil
}

// exists reports whether a stored lead matches the identity, either by the
// duplicate rules or by one of the unique indexes.
func (m *Memory) exists(identity dedup.Identity) bool {
	for _, lead := range m.leads {
		stored := identityOf(lead)
		if identity.Matches(stored) {
			return true
		}
		if identity.NameHash == stored.NameHash && identity.AddressHash == stored.AddressHash {
			return true
		}
	}
	return false
}

func identityOf(lead types.Lead) dedup.Identity {
	return dedup.Identity{
		NameHash:    lead.NameHash,
		AddressHash: lead.AddressHash,
		EmailHash:   lead.EmailHash,
		PhoneHash:   lead.PhoneHash,
	}
}

func (m *Memory) appendLog(op string, total, found, removed, final int) {
	m.logID++
	m.log = append(m.log, types.DedupLogEntry{
		ID:                m.logID,
		Operation:         op,
		TotalProcessed:    total,
		DuplicatesFound:   found,
		DuplicatesRemoved: removed,
		FinalCount:        final,
		CreatedAt:         m.now(),
	})
}

// Query implements Store.
func (m *Memory) Query(_ context.Context, filters Filters, limit int) ([]types.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.Lead, 0)
	for _, lead := range m.leads {
		if matchesFilters(lead, filters) {
			out = append(out, lead)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matchesFilters(lead types.Lead, f Filters) bool {
	if f.City != "" && !containsFold(lead.City, f.City) {
		return false
	}
	if f.Country != "" && !containsFold(lead.Country, f.Country) {
		return false
	}
	if f.Niche != "" && !containsFold(lead.Niche, f.Niche) {
		return false
	}
	if f.Source != "" && lead.Source != f.Source {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Stats implements Store.
func (m *Memory) Stats(_ context.Context) (*types.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &types.Stats{
		TotalLeads:    len(m.leads),
		LeadsBySource: make(map[string]int),
	}
	cities := make(map[string]int)
	niches := make(map[string]int)
	cutoff := m.now().Add(-recentWindow)

	for _, lead := range m.leads {
		stats.LeadsBySource[lead.Source]++
		cities[lead.City]++
		niches[lead.Niche]++
		if lead.CreatedAt.After(cutoff) {
			stats.RecentLeads++
		}
	}

	stats.LeadsByCity = rank(cities, topBuckets)
	stats.LeadsByNiche = rank(niches, topBuckets)
	return stats, nil
}

// rank orders counts descending, ties by key, and keeps the top n.
func rank(counts map[string]int, n int) []types.Bucket {
	buckets := make([]types.Bucket, 0, len(counts))
	for key, count := range counts {
		buckets = append(buckets, types.Bucket{Key: key, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	if len(buckets) > n {
		buckets = buckets[:n]
	}
	return buckets
}

type hashPair struct{ a, b string }

// CleanupDuplicates implements Store.
func (m *Memory) CleanupDuplicates(_ context.Context) (types.CleanupResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byNameAddress := make(map[hashPair]int)
	byEmailPhone := make(map[hashPair]int)
	for _, lead := range m.leads {
		byNameAddress[hashPair{lead.NameHash, lead.AddressHash}]++
		if lead.EmailHash != "" && lead.PhoneHash != "" {
			byEmailPhone[hashPair{lead.EmailHash, lead.PhoneHash}]++
		}
	}

	var result types.CleanupResult
	for _, count := range byNameAddress {
		if count > 1 {
			result.DuplicatesFound++
		}
	}
	for _, count := range byEmailPhone {
		if count > 1 {
			result.DuplicatesFound++
		}
	}

	before := len(m.leads)
	m.leads = keepOldest(m.leads, func(l types.Lead) (hashPair, bool) {
		return hashPair{l.NameHash, l.AddressHash}, true
	})
	m.leads = keepOldest(m.leads, func(l types.Lead) (hashPair, bool) {
		return hashPair{l.EmailHash, l.PhoneHash}, l.EmailHash != "" && l.PhoneHash != ""
	})
	result.DuplicatesRemoved = before - len(m.leads)

	m.appendLog(types.OperationCleanupDuplicates, 0, result.DuplicatesFound, result.DuplicatesRemoved, 0)
	observability.LeadsProcessed.WithLabelValues("removed").Add(float64(result.DuplicatesRemoved))

	return result, nil
}

// keepOldest drops every lead whose group already holds a lower ID.
// Leads stay in ID order, so the first seen per group is the minimum.
func keepOldest(leads []types.Lead, group func(types.Lead) (hashPair, bool)) []types.Lead {
	seen := make(map[hashPair]struct{})
	kept := leads[:0]
	for _, lead := range leads {
		key, ok := group(lead)
		if ok {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		kept = append(kept, lead)
	}
	return kept
}

// DedupLog implements Store. Entries are returned newest first.
func (m *Memory) DedupLog(_ context.Context, limit int) ([]types.DedupLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.DedupLogEntry, 0, len(m.log))
	for i := len(m.log) - 1; i >= 0; i-- {
		out = append(out, m.log[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Close implements Store.
func (m *Memory) Close() {}
