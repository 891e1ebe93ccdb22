// Package logging records calculation provenance alongside the stored
// results, through the results store's database handle.
package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-run
// LogRun writes a run provenance entry to the calc_log table.
func LogRun(db *sql.DB, entry RunEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO calc_log (result_id, seed, trials_json, strategy, duration_ms, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullIfEmpty(entry.ResultID),
		entry.Seed,
		nullIfEmpty(entry.TrialsJSON),
		entry.Strategy,
		entry.DurationMS,
		nullIfEmpty(entry.Note),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log run: %w", err)
	}
	return nil
}

// #endregion log-run

// #region list-runs
// ListRuns returns the most recent run entries.
func ListRuns(db *sql.DB, limit int) ([]RunEntry, error) {
	rows, err := db.Query(
		`SELECT result_id, seed, trials_json, strategy, duration_ms, note, created_at
		 FROM calc_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunEntry
	for rows.Next() {
		var e RunEntry
		var resultID, trialsJSON, note sql.NullString
		var createdStr string
		if err := rows.Scan(&resultID, &e.Seed, &trialsJSON, &e.Strategy, &e.DurationMS, &note, &createdStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.ResultID = resultID.String
		e.TrialsJSON = trialsJSON.String
		e.Note = note.String
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion list-runs

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
