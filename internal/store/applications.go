package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/okarpov/jobradar/internal/job"
)

// CreateApplication records a new application for a posting. New applications
// start approved: the operator has already decided to apply.
func (s *Store) CreateApplication(ctx context.Context, jobID int64, coverLetter, notes string) (int64, error) {
	now := time.Now().UTC()

	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO applications (job_id, status, cover_letter, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, string(job.ApplicationApproved), coverLetter, notes, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("create application: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateApplicationStatus moves an application to the given status. Moving to
// "applied" stamps applied_at; a non-empty responseType marks the response
// fields. Any status may follow any other.
func (s *Store) UpdateApplicationStatus(ctx context.Context, appID int64, status job.ApplicationStatus, responseType, notes string) error {
	if !job.ValidApplicationStatus(status) {
		return fmt.Errorf("invalid application status %q", status)
	}

	now := time.Now().UTC()

	fields := []string{"status = ?", "updated_at = ?"}
	args := []any{string(status), now}

	if status == job.ApplicationApplied {
		fields = append(fields, "applied_at = ?")
		args = append(args, now)
	}
	if responseType != "" {
		fields = append(fields, "response_received = TRUE", "response_type = ?", "response_date = ?")
		args = append(args, responseType, now)
	}
	if notes != "" {
		fields = append(fields, "notes = ?")
		args = append(args, notes)
	}
	args = append(args, appID)

	res, err := s.DB.ExecContext(ctx,
		fmt.Sprintf(`UPDATE applications SET %s WHERE id = ?`, strings.Join(fields, ", ")),
		args...,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("application %d not found", appID)
	}
	return nil
}

// ApplicationRecord is an application joined with its posting and score.
type ApplicationRecord struct {
	job.Application
	Title    string
	Company  string
	Location string
	URL      string
	Score    *int
}

// ListApplications returns applications newest first, optionally filtered by
// status.
func (s *Store) ListApplications(ctx context.Context, status job.ApplicationStatus) ([]ApplicationRecord, error) {
	query := `
		SELECT
			a.id, a.job_id, a.status, a.applied_at, a.cover_letter, a.notes,
			a.response_received, a.response_type, a.response_date, a.created_at, a.updated_at,
			jp.title, jp.company, jp.location, jp.url,
			ja.compatibility_score
		FROM applications a
		JOIN job_postings jp ON a.job_id = jp.id
		LEFT JOIN job_analysis ja ON jp.id = ja.job_id`

	var args []any
	if status != "" {
		query += ` WHERE a.status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var records []ApplicationRecord
	for rows.Next() {
		var (
			r            ApplicationRecord
			appliedAt    sql.NullTime
			coverLetter  sql.NullString
			notes        sql.NullString
			responseType sql.NullString
			responseDate sql.NullTime
			location     sql.NullString
			url          sql.NullString
			score        sql.NullInt64
		)

		err := rows.Scan(
			&r.ID, &r.JobID, &r.Status, &appliedAt, &coverLetter, &notes,
			&r.ResponseReceived, &responseType, &responseDate, &r.CreatedAt, &r.UpdatedAt,
			&r.Title, &r.Company, &location, &url,
			&score,
		)
		if err != nil {
			return nil, err
		}

		r.CoverLetter = coverLetter.String
		r.Notes = notes.String
		r.ResponseType = responseType.String
		r.Location = location.String
		r.URL = url.String
		if appliedAt.Valid {
			t := appliedAt.Time
			r.AppliedAt = &t
		}
		if responseDate.Valid {
			t := responseDate.Time
			r.ResponseDate = &t
		}
		if score.Valid {
			v := int(score.Int64)
			r.Score = &v
		}

		records = append(records, r)
	}
	return records, rows.Err()
}
