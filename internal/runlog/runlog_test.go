package runlog

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE provenance_log (
		run_id      TEXT NOT NULL,
		stage       TEXT NOT NULL,
		detail_json TEXT,
		outcome     TEXT NOT NULL,
		reason      TEXT,
		created_at  TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

func TestLogSuccess(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := Entry{
		RunID:      "run-1",
		Stage:      "sample",
		DetailJSON: `{"seed":7,"warmup":100,"kept":50}`,
		Outcome:    "ok",
		Reason:     "",
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := Log(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM provenance_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var runID, stage, outcome string
	db.QueryRow("SELECT run_id, stage, outcome FROM provenance_log").Scan(&runID, &stage, &outcome)
	if runID != "run-1" || stage != "sample" || outcome != "ok" {
		t.Errorf("row = %q/%q/%q", runID, stage, outcome)
	}
}

func TestLogZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC()
	if err := Log(db, Entry{RunID: "run-2", Stage: "persist", Outcome: "ok"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM provenance_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogEmptyOptionalFields(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := Entry{
		RunID:     "run-3",
		Stage:     "derive",
		Outcome:   "error",
		CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := Log(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var detailJSON, reason sql.NullString
	db.QueryRow("SELECT detail_json, reason FROM provenance_log").Scan(&detailJSON, &reason)
	if detailJSON.Valid {
		t.Error("expected NULL detail_json for empty string")
	}
	if reason.Valid {
		t.Error("expected NULL reason for empty string")
	}
}

func TestLogError(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	if err := Log(db, Entry{RunID: "run-4", Stage: "sample", Outcome: "ok"}); err == nil {
		t.Fatal("expected error on closed db")
	}
}
