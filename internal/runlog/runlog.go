// Package runlog records fit-run lifecycle events in the provenance_log
// table so a finished database explains how its draws were produced.
package runlog

import (
	"database/sql"
	"fmt"
	"time"
)

// #region entry
// Entry is a single row in the provenance_log table.
type Entry struct {
	RunID      string
	Stage      string // "partition" | "sample" | "derive" | "persist"
	DetailJSON string
	Outcome    string // "ok" | "error"
	Reason     string
	CreatedAt  time.Time
}

// SampleDetail captures the sampler settings and diagnostics for a run,
// serialized as JSON into provenance_log.detail_json.
type SampleDetail struct {
	Seed       uint64  `json:"seed"`
	Warmup     int     `json:"warmup"`
	Kept       int     `json:"kept"`
	Acceptance float64 `json:"acceptance"`
	FinalScale float64 `json:"final_scale"`
	ElapsedMs  int64   `json:"elapsed_ms"`
}

// #endregion entry

// #region log
// Log writes a provenance entry.
func Log(db *sql.DB, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO provenance_log (run_id, stage, detail_json, outcome, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Stage,
		nullIfEmpty(entry.DetailJSON),
		entry.Outcome,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log run event: %w", err)
	}
	return nil
}

// #endregion log

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
