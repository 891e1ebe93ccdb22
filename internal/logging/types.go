package logging

import "time"

// #region run-entry
// RunEntry is a single row in the calc_log table: the provenance of one
// effective-area calculation.
type RunEntry struct {
	ResultID   string // stored result this run produced, if any
	Seed       int64
	TrialsJSON string // per-bin trial counts as a JSON array
	Strategy   string // trigger strategy name
	DurationMS int64
	Note       string
	CreatedAt  time.Time
}

// #endregion run-entry
