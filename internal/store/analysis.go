package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okarpov/jobradar/internal/job"
)

// SaveAnalysis stores the analysis for a posting, replacing any previous one.
func (s *Store) SaveAnalysis(ctx context.Context, jobID int64, a *job.Analysis) error {
	matchReasons, err := json.Marshal(a.MatchReasons)
	if err != nil {
		return fmt.Errorf("marshal match reasons: %w", err)
	}
	skillGaps, err := json.Marshal(a.SkillGaps)
	if err != nil {
		return fmt.Errorf("marshal skill gaps: %w", err)
	}
	suggestions, err := json.Marshal(a.CoverLetterSuggestions)
	if err != nil {
		return fmt.Errorf("marshal cover letter suggestions: %w", err)
	}
	preparation, err := json.Marshal(a.InterviewPreparation)
	if err != nil {
		return fmt.Errorf("marshal interview preparation: %w", err)
	}

	analyzedAt := a.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now().UTC()
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO job_analysis
		(job_id, compatibility_score, match_reasons, skill_gaps, recommended_application,
		 cover_letter_suggestions, interview_preparation, overall_assessment, fallback, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			compatibility_score = excluded.compatibility_score,
			match_reasons = excluded.match_reasons,
			skill_gaps = excluded.skill_gaps,
			recommended_application = excluded.recommended_application,
			cover_letter_suggestions = excluded.cover_letter_suggestions,
			interview_preparation = excluded.interview_preparation,
			overall_assessment = excluded.overall_assessment,
			fallback = excluded.fallback,
			analyzed_at = excluded.analyzed_at`,
		jobID, a.Score, string(matchReasons), string(skillGaps), a.Recommended,
		string(suggestions), string(preparation), a.OverallAssessment, a.Fallback, analyzedAt,
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}

	a.JobID = jobID
	return nil
}

// GetAnalysis fetches the analysis for a posting, or nil when none exists.
func (s *Store) GetAnalysis(ctx context.Context, jobID int64) (*job.Analysis, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, job_id, compatibility_score, match_reasons, skill_gaps,
		       recommended_application, cover_letter_suggestions,
		       interview_preparation, overall_assessment, fallback, analyzed_at
		FROM job_analysis
		WHERE job_id = ?`, jobID)

	a, err := scanAnalysis(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return a, nil
}

// MatchedJob pairs a posting with its analysis and, when present, the state
// of an application derived from it.
type MatchedJob struct {
	Posting           job.Posting
	Analysis          job.Analysis
	ApplicationStatus string
	AppliedAt         *time.Time
}

const matchedJobWindow = "-60 days"

// MatchedJobs lists analyzed postings from the last two months, best score
// first.
func (s *Store) MatchedJobs(ctx context.Context, limit int) ([]MatchedJob, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT
			jp.id, jp.title, jp.company, jp.location, jp.description, jp.requirements,
			jp.url, jp.salary, jp.posted_date, jp.source, jp.scraped_at,
			jp.review_status, jp.review_notes, jp.reviewed_at,
			ja.id, ja.job_id, ja.compatibility_score, ja.match_reasons, ja.skill_gaps,
			ja.recommended_application, ja.cover_letter_suggestions,
			ja.interview_preparation, ja.overall_assessment, ja.fallback, ja.analyzed_at,
			a.status, a.applied_at
		FROM job_postings jp
		JOIN job_analysis ja ON jp.id = ja.job_id
		LEFT JOIN applications a ON jp.id = a.job_id
		WHERE jp.scraped_at >= datetime('now', ?)
		ORDER BY ja.compatibility_score DESC, jp.scraped_at DESC
		LIMIT ?`, matchedJobWindow, limit)
	if err != nil {
		return nil, fmt.Errorf("list matched jobs: %w", err)
	}
	defer rows.Close()

	var matched []MatchedJob
	for rows.Next() {
		var (
			m          MatchedJob
			location   sql.NullString
			desc       sql.NullString
			reqs       sql.NullString
			url        sql.NullString
			salary     sql.NullString
			postedDate sql.NullString
			source     sql.NullString
			status     sql.NullString
			notes      sql.NullString
			reviewedAt sql.NullTime

			matchReasons sql.NullString
			skillGaps    sql.NullString
			suggestions  sql.NullString
			preparation  sql.NullString
			assessment   sql.NullString

			appStatus sql.NullString
			appliedAt sql.NullTime
		)

		err := rows.Scan(
			&m.Posting.ID, &m.Posting.Title, &m.Posting.Company, &location, &desc, &reqs,
			&url, &salary, &postedDate, &source, &m.Posting.ScrapedAt,
			&status, &notes, &reviewedAt,
			&m.Analysis.ID, &m.Analysis.JobID, &m.Analysis.Score, &matchReasons, &skillGaps,
			&m.Analysis.Recommended, &suggestions, &preparation, &assessment,
			&m.Analysis.Fallback, &m.Analysis.AnalyzedAt,
			&appStatus, &appliedAt,
		)
		if err != nil {
			return nil, err
		}

		m.Posting.Location = location.String
		m.Posting.Description = desc.String
		m.Posting.Requirements = reqs.String
		m.Posting.URL = url.String
		m.Posting.Salary = salary.String
		m.Posting.PostedDate = postedDate.String
		m.Posting.Source = source.String
		m.Posting.ReviewStatus = job.ReviewStatus(status.String)
		m.Posting.ReviewNotes = notes.String
		if reviewedAt.Valid {
			t := reviewedAt.Time
			m.Posting.ReviewedAt = &t
		}

		m.Analysis.OverallAssessment = assessment.String
		m.Analysis.MatchReasons = decodeStrings(matchReasons)
		m.Analysis.SkillGaps = decodeStrings(skillGaps)
		m.Analysis.CoverLetterSuggestions = decodeStrings(suggestions)
		m.Analysis.InterviewPreparation = decodeStrings(preparation)

		m.ApplicationStatus = appStatus.String
		if appliedAt.Valid {
			t := appliedAt.Time
			m.AppliedAt = &t
		}

		matched = append(matched, m)
	}
	return matched, rows.Err()
}

// Recommended narrows MatchedJobs to postings whose current analysis
// recommends applying.
func (s *Store) Recommended(ctx context.Context) ([]MatchedJob, error) {
	matched, err := s.MatchedJobs(ctx, 0)
	if err != nil {
		return nil, err
	}

	recommended := matched[:0:0]
	for _, m := range matched {
		if m.Analysis.Recommended {
			recommended = append(recommended, m)
		}
	}
	return recommended, nil
}

func scanAnalysis(row rowScanner) (*job.Analysis, error) {
	var (
		a            job.Analysis
		matchReasons sql.NullString
		skillGaps    sql.NullString
		suggestions  sql.NullString
		preparation  sql.NullString
		assessment   sql.NullString
	)

	err := row.Scan(
		&a.ID, &a.JobID, &a.Score, &matchReasons, &skillGaps,
		&a.Recommended, &suggestions, &preparation, &assessment,
		&a.Fallback, &a.AnalyzedAt,
	)
	if err != nil {
		return nil, err
	}

	a.OverallAssessment = assessment.String
	a.MatchReasons = decodeStrings(matchReasons)
	a.SkillGaps = decodeStrings(skillGaps)
	a.CoverLetterSuggestions = decodeStrings(suggestions)
	a.InterviewPreparation = decodeStrings(preparation)

	return &a, nil
}

func decodeStrings(col sql.NullString) []string {
	if !col.Valid || col.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(col.String), &out); err != nil {
		return nil
	}
	return out
}
