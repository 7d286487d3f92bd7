package job

import (
	"strings"
	"time"
)

// ReviewStatus is the operator-facing triage state of a posting. Any status
// may move to any other; a reviewer can revisit a decision at any time.
type ReviewStatus string

const (
	ReviewNew           ReviewStatus = "new"
	ReviewReviewed      ReviewStatus = "reviewed"
	ReviewInterested    ReviewStatus = "interested"
	ReviewNotInterested ReviewStatus = "not_interested"
)

// ApplicationStatus tracks an application through its lifecycle. Updates may
// arrive out of order (an employer reply can land before "applied" is
// recorded), so any status may follow any other.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationApplied   ApplicationStatus = "applied"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationInterview ApplicationStatus = "interview"
	ApplicationHired     ApplicationStatus = "hired"
)

var reviewStatuses = map[ReviewStatus]struct{}{
	ReviewNew:           {},
	ReviewReviewed:      {},
	ReviewInterested:    {},
	ReviewNotInterested: {},
}

var applicationStatuses = map[ApplicationStatus]struct{}{
	ApplicationPending:   {},
	ApplicationApproved:  {},
	ApplicationApplied:   {},
	ApplicationRejected:  {},
	ApplicationInterview: {},
	ApplicationHired:     {},
}

// ValidReviewStatus reports whether s names a known review status.
func ValidReviewStatus(s ReviewStatus) bool {
	_, ok := reviewStatuses[s]
	return ok
}

// ValidApplicationStatus reports whether s names a known application status.
func ValidApplicationStatus(s ApplicationStatus) bool {
	_, ok := applicationStatuses[s]
	return ok
}

// Posting is a single discovered job posting.
type Posting struct {
	ID           int64        `json:"id,omitempty"`
	Title        string       `json:"title"`
	Company      string       `json:"company"`
	Location     string       `json:"location,omitempty"`
	Description  string       `json:"description,omitempty"`
	Requirements string       `json:"requirements,omitempty"`
	URL          string       `json:"url,omitempty"`
	Salary       string       `json:"salary,omitempty"`
	PostedDate   string       `json:"posted_date,omitempty"`
	Source       string       `json:"source,omitempty"`
	ScrapedAt    time.Time    `json:"scraped_at,omitempty"`
	ReviewStatus ReviewStatus `json:"review_status,omitempty"`
	ReviewNotes  string       `json:"review_notes,omitempty"`
	ReviewedAt   *time.Time   `json:"reviewed_at,omitempty"`

	// Score is the compatibility score joined in from the posting's
	// analysis, when one exists.
	Score *int `json:"compatibility_score,omitempty"`
}

// Fingerprint is the deduplication and idempotency key for a posting:
// lowercased title joined to lowercased company.
func Fingerprint(title, company string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "_" + strings.ToLower(strings.TrimSpace(company))
}

// Fingerprint returns the posting's deduplication key.
func (p *Posting) Fingerprint() string {
	return Fingerprint(p.Title, p.Company)
}

// Analysis is the AI (or fallback) compatibility assessment of one posting
// against the candidate profile. At most one analysis exists per posting;
// re-analysis overwrites in place.
type Analysis struct {
	ID                     int64     `json:"id,omitempty"`
	JobID                  int64     `json:"job_id"`
	Score                  int       `json:"compatibility_score"`
	MatchReasons           []string  `json:"match_reasons"`
	SkillGaps              []string  `json:"skill_gaps"`
	Recommended            bool      `json:"recommended_application"`
	CoverLetterSuggestions []string  `json:"cover_letter_suggestions"`
	InterviewPreparation   []string  `json:"interview_preparation"`
	OverallAssessment      string    `json:"overall_assessment"`
	Fallback               bool      `json:"fallback,omitempty"`
	AnalyzedAt             time.Time `json:"analyzed_at,omitempty"`
}

// Application tracks an application derived from a persisted posting.
type Application struct {
	ID               int64             `json:"id,omitempty"`
	JobID            int64             `json:"job_id"`
	Status           ApplicationStatus `json:"status"`
	AppliedAt        *time.Time        `json:"applied_at,omitempty"`
	CoverLetter      string            `json:"cover_letter,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	ResponseReceived bool              `json:"response_received"`
	ResponseType     string            `json:"response_type,omitempty"`
	ResponseDate     *time.Time        `json:"response_date,omitempty"`
	CreatedAt        time.Time         `json:"created_at,omitempty"`
	UpdatedAt        time.Time         `json:"updated_at,omitempty"`
}
