// Package classify decides whether a posting is relevant to the target role
// profile using fixed keyword sets. The decision is pure and deterministic;
// precedence is junior exclusion, then domain plus seniority or experience,
// then domain in the title alone.
package classify

import (
	"strings"

	"github.com/okarpov/jobradar/internal/job"
)

var seniorIndicators = []string{
	"senior", "sr.", "lead", "principal", "head of", "director",
	"manager", "chief", "vp", "vice president", "executive",
	"architect", "staff", "expert", "specialist",
}

var domainKeywords = []string{
	"data", "analytics", "analyst", "scientist", "engineer",
	"machine learning", "ml", "ai", "artificial intelligence",
	"business intelligence", "bi", "tableau", "power bi",
	"sql", "python", "statistics", "statistical",
	"insight", "reporting", "dashboard", "visualization",
	"database", "warehouse", "etl", "pipeline", "big data",
	"hadoop", "spark", "aws", "azure", "gcp", "cloud",
	"research", "predictive", "modeling", "algorithm",
}

var experienceIndicators = []string{
	"5+ years", "6+ years", "7+ years", "8+ years",
	// "5-" catches ranged requirements such as "5-7 years".
	"5-",
	"experienced", "expert level", "advanced", "leadership",
	"team lead", "mentor", "strategic", "enterprise",
}

var juniorIndicators = []string{
	"junior", "jr.", "entry", "entry-level", "graduate", "intern",
	"trainee", "apprentice", "0-2 years", "0-1 years", "fresh",
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// IsRelevant reports whether the posting looks like a senior role in the
// target domain. A domain keyword in the title is enough on its own when no
// junior indicator is present; this shortcut is intentional.
func IsRelevant(p job.Posting) bool {
	title := strings.ToLower(p.Title)
	combined := title + " " + strings.ToLower(p.Description) + " " + strings.ToLower(p.Requirements)

	if containsAny(combined, juniorIndicators) {
		return false
	}

	hasDomain := containsAny(combined, domainKeywords)
	if hasDomain && (containsAny(combined, seniorIndicators) || containsAny(combined, experienceIndicators)) {
		return true
	}

	return containsAny(title, domainKeywords)
}
