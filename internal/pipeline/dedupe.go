package pipeline

import "github.com/okarpov/jobradar/internal/job"

// Dedupe removes postings that share a fingerprint, keeping the first
// occurrence. Sources run in priority order, so the first occurrence comes
// from the most trusted source.
func Dedupe(postings []job.Posting) []job.Posting {
	seen := make(map[string]struct{}, len(postings))
	unique := postings[:0:0]

	for _, p := range postings {
		fp := p.Fingerprint()
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}
