// Package ai defines the interfaces between the pipeline and the language
// model backends that score job postings.
package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/okarpov/jobradar/internal/job"
)

// ErrQuotaExceeded reports that the model backend refused a request because
// the free-tier quota is spent. The pipeline stops sending requests for the
// rest of the run when it sees this error.
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// Scorer evaluates how well a posting fits the candidate profile.
type Scorer interface {
	Score(ctx context.Context, profile *job.Profile, posting *job.Posting) (*job.Analysis, error)
}

// Generator produces free-form text for a prompt. Implementations wrap a
// concrete model API; tests supply stubs.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

var quotaPhrases = []string{
	"quota",
	"rate limit",
	"exceeded",
	"too many requests",
	"429",
}

// IsQuotaError reports whether err looks like a quota or rate-limit failure
// from the model backend.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range quotaPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
