package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Posting{Title: "Senior Data Engineer", Company: "Acme Corp"}
	b := Posting{Title: "SENIOR DATA ENGINEER", Company: "acme corp", Location: "Remote"}

	assert.Equal(t, "senior data engineer_acme corp", a.Fingerprint())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "differing case and metadata must collapse to one key")

	c := Posting{Title: "Senior Data Engineer", Company: "Initech"}
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestFingerprintTrimsWhitespace(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "data scientist_netflix", Fingerprint("  Data Scientist ", " Netflix\n"))
}

func TestStatusValidation(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidReviewStatus(ReviewInterested))
	assert.False(t, ValidReviewStatus("archived"))

	assert.True(t, ValidApplicationStatus(ApplicationHired))
	assert.False(t, ValidApplicationStatus("ghosted"))
}
