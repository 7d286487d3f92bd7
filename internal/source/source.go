// Package source holds the posting acquisition adapters. Every adapter
// isolates its own failures: Fetch logs internal errors and returns whatever
// partial results it obtained, possibly none, and never panics or errors past
// its boundary.
package source

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/okarpov/jobradar/internal/job"
	"github.com/okarpov/jobradar/internal/pacing"
)

// Query carries the search parameters for one acquisition pass.
type Query struct {
	Keywords  []string
	Locations []string
	// Quota bounds how many postings a single run should retrieve in total.
	Quota int
}

// Source retrieves raw postings from one external origin.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) []job.Posting
}

// Politeness delay bounds between requests to the same origin.
const (
	minRequestDelay = 1 * time.Second
	maxRequestDelay = 3 * time.Second
)

// delayFunc is swapped out in tests to avoid real sleeps.
type delayFunc func(min, max time.Duration)

var defaultDelay delayFunc = pacing.Politeness

// limit caps keyword/location fan-out so a single run stays polite.
func limit[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// titleCase uppercases the first letter of each word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// CanonicalSource maps a posting URL (or a raw source name) to the canonical
// source label used for filtering and reporting.
func CanonicalSource(name, rawURL string) string {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = strings.ToLower(u.Host)
	}

	switch {
	case strings.Contains(host, "linkedin.com"):
		return "LinkedIn"
	case strings.Contains(host, "indeed.com"):
		return "Indeed"
	case strings.Contains(host, "glassdoor.com"):
		return "Glassdoor"
	case strings.Contains(host, "angel.co"), strings.Contains(host, "wellfound.com"):
		return "AngelList"
	}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "linkedin"):
		return "LinkedIn"
	case strings.Contains(lower, "indeed"):
		return "Indeed"
	case strings.Contains(lower, "glassdoor"):
		return "Glassdoor"
	case strings.Contains(lower, "angel"):
		return "AngelList"
	case strings.Contains(lower, "company"), strings.Contains(lower, "career"):
		return "Company Career Page"
	}

	if name == "" {
		return "Unknown"
	}
	return name
}
