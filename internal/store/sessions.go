package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// StartSession records the beginning of a search run and returns its id.
func (s *Store) StartSession(ctx context.Context, name string, keywords, locations []string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO search_sessions (session_name, keywords, locations, started_at)
		VALUES (?, ?, ?, ?)`,
		name, strings.Join(keywords, ", "), strings.Join(locations, ", "), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("start session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FinishSession stamps a session complete with its result counts.
func (s *Store) FinishSession(ctx context.Context, sessionID int64, totalFound, matched int) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE search_sessions
		SET total_jobs_found = ?, matched_jobs = ?, completed_at = ?
		WHERE id = ?`,
		totalFound, matched, time.Now().UTC(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}
