package dedup

import (
	"strings"

	"github.com/jonathan/leadgen/internal/types"
)

// Identifiers derives a candidate's composite identifiers in priority order:
// name|address when both are present, then email|phone when both are present,
// otherwise email|<email> or phone|<phone>.
func Identifiers(c types.Candidate) []string {
	var ids []string

	name := strings.ToLower(strings.TrimSpace(c.Name))
	address := strings.ToLower(strings.TrimSpace(c.Address))
	email := strings.ToLower(strings.TrimSpace(c.Email))
	phone := strings.TrimSpace(c.Phone)

	if name != "" && address != "" {
		ids = append(ids, name+"|"+address)
	}

	switch {
	case email != "" && phone != "":
		ids = append(ids, email+"|"+phone)
	case email != "":
		ids = append(ids, "email|"+email)
	case phone != "":
		ids = append(ids, "phone|"+phone)
	}

	return ids
}

// Batch removes duplicates within one run's candidates. A candidate is kept only
// if none of its identifiers has been seen; the first one encountered wins.
// Candidates without identifiers are kept.
func Batch(candidates []types.Candidate) []types.Candidate {
	if len(candidates) == 0 {
		return []types.Candidate{}
	}

	seen := make(map[string]struct{})
	kept := make([]types.Candidate, 0, len(candidates))

	for _, c := range candidates {
		ids := Identifiers(c)

		duplicate := false
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		for _, id := range ids {
			seen[id] = struct{}{}
		}
		kept = append(kept, c)
	}

	return kept
}
