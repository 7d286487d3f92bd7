// Package store persists postings, analyses, and applications in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database holding the job pipeline state.
type Store struct {
	DB *sql.DB
}

// Open opens the SQLite database at path and enables foreign keys. The
// sqlite time format keeps stored timestamps comparable with datetime()
// expressions in queries.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS job_postings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	location TEXT,
	description TEXT,
	requirements TEXT,
	url TEXT,
	salary TEXT,
	posted_date TEXT,
	source TEXT DEFAULT 'Unknown',
	scraped_at TIMESTAMP,
	fingerprint TEXT UNIQUE,
	review_status TEXT DEFAULT 'new',
	review_notes TEXT,
	reviewed_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS job_analysis (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id INTEGER NOT NULL UNIQUE,
	compatibility_score INTEGER,
	match_reasons TEXT,
	skill_gaps TEXT,
	recommended_application BOOLEAN,
	cover_letter_suggestions TEXT,
	interview_preparation TEXT,
	overall_assessment TEXT,
	fallback BOOLEAN DEFAULT FALSE,
	analyzed_at TIMESTAMP,
	FOREIGN KEY (job_id) REFERENCES job_postings (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS applications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id INTEGER NOT NULL,
	status TEXT DEFAULT 'pending',
	applied_at TIMESTAMP,
	cover_letter TEXT,
	notes TEXT,
	response_received BOOLEAN DEFAULT FALSE,
	response_date TIMESTAMP,
	response_type TEXT,
	created_at TIMESTAMP,
	updated_at TIMESTAMP,
	FOREIGN KEY (job_id) REFERENCES job_postings (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS search_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_name TEXT,
	keywords TEXT,
	locations TEXT,
	total_jobs_found INTEGER,
	matched_jobs INTEGER,
	started_at TIMESTAMP,
	completed_at TIMESTAMP
);
`)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
