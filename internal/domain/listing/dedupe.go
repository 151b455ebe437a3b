package listing

import "github.com/honeycarbs/tenuretrack/internal/domain"

// Dedupe keeps the first occurrence of every job id in input order and drops
// listings without an id.
func Dedupe(listings []domain.ListingReference) domain.ListingSet {
	seen := make(map[string]struct{}, len(listings))
	out := make(domain.ListingSet, 0, len(listings))
	for _, l := range listings {
		if !l.HasID() {
			continue
		}
		if _, ok := seen[l.JobID]; ok {
			continue
		}
		seen[l.JobID] = struct{}{}
		out = append(out, l)
	}
	return out
}
