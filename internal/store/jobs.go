package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/okarpov/jobradar/internal/job"
)

// SaveJob inserts a posting, keyed by its fingerprint. Re-saving an already
// known posting is not an error: the existing row wins and its id is
// returned along with created=false.
func (s *Store) SaveJob(ctx context.Context, p *job.Posting) (id int64, created bool, err error) {
	fingerprint := p.Fingerprint()

	scrapedAt := p.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now().UTC()
	}

	res, err := s.DB.ExecContext(ctx, `
		INSERT OR IGNORE INTO job_postings
		(title, company, location, description, requirements, url, salary, posted_date, source, scraped_at, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Company, p.Location, p.Description, p.Requirements,
		p.URL, p.Salary, p.PostedDate, p.Source, scrapedAt, fingerprint,
	)
	if err != nil {
		return 0, false, fmt.Errorf("save job posting: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}

	if affected > 0 {
		id, err = res.LastInsertId()
		if err != nil {
			return 0, false, err
		}
		p.ID = id
		return id, true, nil
	}

	// Already present, look up the winning row.
	row := s.DB.QueryRowContext(ctx, `SELECT id FROM job_postings WHERE fingerprint = ?`, fingerprint)
	if err := row.Scan(&id); err != nil {
		return 0, false, fmt.Errorf("lookup existing posting: %w", err)
	}
	p.ID = id
	return id, false, nil
}

// SetReviewStatus moves a posting to the given review status. Any status to
// any status is allowed; reviewers change their minds.
func (s *Store) SetReviewStatus(ctx context.Context, jobID int64, status job.ReviewStatus, notes string) error {
	if !job.ValidReviewStatus(status) {
		return fmt.Errorf("invalid review status %q", status)
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE job_postings
		SET review_status = ?, review_notes = ?, reviewed_at = ?
		WHERE id = ?`,
		string(status), notes, time.Now().UTC(), jobID,
	)
	if err != nil {
		return fmt.Errorf("update review status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %d not found", jobID)
	}
	return nil
}

// DeleteJob removes a posting; analyses and applications follow via cascade.
func (s *Store) DeleteJob(ctx context.Context, jobID int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM job_postings WHERE id = ?`, jobID)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %d not found", jobID)
	}
	return nil
}

// Filter narrows ListJobs and CountJobs. Zero values mean "all".
type Filter struct {
	Status string
	Source string
	Limit  int
	Offset int
}

const defaultPageSize = 25

// ListJobs returns postings newest first, with the analysis score joined in
// when one exists.
func (s *Store) ListJobs(ctx context.Context, f Filter) ([]job.Posting, error) {
	query := `
		SELECT
			jp.id, jp.title, jp.company, jp.location, jp.description, jp.requirements,
			jp.url, jp.salary, jp.posted_date, jp.source, jp.scraped_at,
			jp.review_status, jp.review_notes, jp.reviewed_at,
			ja.compatibility_score
		FROM job_postings jp
		LEFT JOIN job_analysis ja ON jp.id = ja.job_id
		WHERE 1=1`

	var args []any
	if f.Status != "" && f.Status != "all" {
		query += ` AND jp.review_status = ?`
		args = append(args, f.Status)
	}
	if f.Source != "" && f.Source != "all" {
		query += ` AND jp.source = ?`
		args = append(args, f.Source)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	query += ` ORDER BY jp.scraped_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var postings []job.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

// CountJobs returns the number of postings matching the filter.
func (s *Store) CountJobs(ctx context.Context, f Filter) (int, error) {
	query := `SELECT COUNT(*) FROM job_postings WHERE 1=1`
	var args []any
	if f.Status != "" && f.Status != "all" {
		query += ` AND review_status = ?`
		args = append(args, f.Status)
	}
	if f.Source != "" && f.Source != "all" {
		query += ` AND source = ?`
		args = append(args, f.Source)
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return count, nil
}

// GetJob fetches a single posting by id.
func (s *Store) GetJob(ctx context.Context, jobID int64) (*job.Posting, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT
			jp.id, jp.title, jp.company, jp.location, jp.description, jp.requirements,
			jp.url, jp.salary, jp.posted_date, jp.source, jp.scraped_at,
			jp.review_status, jp.review_notes, jp.reviewed_at,
			ja.compatibility_score
		FROM job_postings jp
		LEFT JOIN job_analysis ja ON jp.id = ja.job_id
		WHERE jp.id = ?`, jobID)

	p, err := scanPosting(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("job %d not found", jobID)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &p, nil
}

// Sources lists the distinct posting sources present in the database.
func (s *Store) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT DISTINCT source FROM job_postings
		WHERE source IS NOT NULL AND source != ''
		ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (job.Posting, error) {
	var (
		p          job.Posting
		location   sql.NullString
		desc       sql.NullString
		reqs       sql.NullString
		url        sql.NullString
		salary     sql.NullString
		postedDate sql.NullString
		source     sql.NullString
		notes      sql.NullString
		status     sql.NullString
		reviewedAt sql.NullTime
		score      sql.NullInt64
	)

	err := row.Scan(
		&p.ID, &p.Title, &p.Company, &location, &desc, &reqs,
		&url, &salary, &postedDate, &source, &p.ScrapedAt,
		&status, &notes, &reviewedAt, &score,
	)
	if err != nil {
		return job.Posting{}, err
	}

	p.Location = location.String
	p.Description = desc.String
	p.Requirements = reqs.String
	p.URL = url.String
	p.Salary = salary.String
	p.PostedDate = postedDate.String
	p.Source = source.String
	p.ReviewNotes = notes.String
	p.ReviewStatus = job.ReviewStatus(strings.TrimSpace(status.String))
	if reviewedAt.Valid {
		t := reviewedAt.Time
		p.ReviewedAt = &t
	}
	if score.Valid {
		v := int(score.Int64)
		p.Score = &v
	}

	return p, nil
}
