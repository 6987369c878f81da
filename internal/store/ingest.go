package store

import (
	"database/sql"
	"time"
)

// IngestRun records one fetch-and-render pass for a location.
type IngestRun struct {
	ID           int64
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	LocationID   string
	Rendered     bool
	Success      bool
	ErrorMessage sql.NullString
}

func (s *Store) StartIngestRun(locationID string) (*IngestRun, error) {
	run := &IngestRun{
		StartedAt:  time.Now().UTC(),
		LocationID: locationID,
	}

	result, err := s.db.Exec(`
		INSERT INTO ingest_runs (started_at, location_id, success)
		VALUES (?, ?, FALSE)
	`, run.StartedAt, run.LocationID)
	if err != nil {
		return nil, err
	}

	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return run, nil
}

// CompleteIngestRun records the outcome of run. A nil run is ignored.
func (s *Store) CompleteIngestRun(run *IngestRun, runErr error) error {
	if run == nil {
		return nil
	}

	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	run.Success = runErr == nil
	if runErr != nil {
		run.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
	}

	_, err := s.db.Exec(`
		UPDATE ingest_runs SET
			finished_at = ?,
			rendered = ?,
			success = ?,
			error_message = ?
		WHERE id = ?
	`, run.FinishedAt, run.Rendered, run.Success, run.ErrorMessage, run.ID)
	return err
}

// LastSuccessfulIngest returns the finish time of the most recent
// successful run, or the zero time if there has been none.
func (s *Store) LastSuccessfulIngest() (time.Time, error) {
	var t sql.NullTime
	err := s.db.QueryRow(`
		SELECT finished_at FROM ingest_runs
		WHERE success = TRUE
		ORDER BY finished_at DESC
		LIMIT 1
	`).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return t.Time, nil
}

// GetRecentIngestErrors returns recent failed runs, newest first.
func (s *Store) GetRecentIngestErrors(limit int) ([]IngestRun, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, location_id, rendered, success, error_message
		FROM ingest_runs
		WHERE success = FALSE AND finished_at IS NOT NULL
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []IngestRun
	for rows.Next() {
		var r IngestRun
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.LocationID,
			&r.Rendered, &r.Success, &r.ErrorMessage); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
