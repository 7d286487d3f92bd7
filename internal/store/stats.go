package store

import (
	"context"
	"fmt"
)

// DashboardStats is a point-in-time summary of pipeline activity.
type DashboardStats struct {
	TotalJobs         int
	TotalMatchedJobs  int
	HighScoreMatches  int
	TotalApplications int
	AppliedCount      int
	PendingCount      int
	RecentJobs        int
}

const highScoreThreshold = 80

// Stats computes the dashboard summary.
func (s *Store) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	queries := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM job_postings`, &stats.TotalJobs},
		{`SELECT COUNT(*) FROM job_analysis WHERE compatibility_score > 0`, &stats.TotalMatchedJobs},
		{fmt.Sprintf(`SELECT COUNT(*) FROM job_analysis WHERE compatibility_score >= %d`, highScoreThreshold), &stats.HighScoreMatches},
		{`SELECT COUNT(*) FROM applications`, &stats.TotalApplications},
		{`SELECT COUNT(*) FROM applications WHERE status = 'applied'`, &stats.AppliedCount},
		{`SELECT COUNT(*) FROM applications WHERE status = 'approved'`, &stats.PendingCount},
		{`SELECT COUNT(*) FROM job_postings WHERE scraped_at > datetime('now', '-7 days')`, &stats.RecentJobs},
	}

	for _, q := range queries {
		if err := s.DB.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("dashboard stats: %w", err)
		}
	}

	return stats, nil
}
