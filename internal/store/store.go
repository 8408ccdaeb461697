// Package store persists fit runs, their posterior draws, and a provenance
// log in SQLite.
package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Jiaqing-Zhang/weibull-aft/internal/posterior"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	created_at     TEXT NOT NULL,
	seed           INTEGER NOT NULL,
	config_json    TEXT,
	n_events       INTEGER NOT NULL,
	n_censored     INTEGER NOT NULL,
	n_covariates   INTEGER NOT NULL,
	acceptance     REAL,
	elapsed_ms     INTEGER
);

CREATE TABLE IF NOT EXISTS draws (
	run_id        TEXT NOT NULL,
	draw_index    INTEGER NOT NULL,
	beta          BLOB NOT NULL,
	alpha         REAL NOT NULL,
	hazard_trt    REAL NOT NULL,
	hazard_pbo    REAL NOT NULL,
	hazard_ratio  REAL NOT NULL,
	pred_trt      BLOB,
	pred_pbo      BLOB,
	PRIMARY KEY (run_id, draw_index),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	stage         TEXT NOT NULL,
	detail_json   TEXT,
	outcome       TEXT NOT NULL,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region run-record
// RunRecord describes one fit run's metadata.
type RunRecord struct {
	RunID         string
	CreatedAt     time.Time
	Seed          uint64
	ConfigJSON    string
	NumEvents     int
	NumCensored   int
	NumCovariates int
	Acceptance    float64
	ElapsedMs     int64
}

// #endregion run-record

// #region store-struct
// Store manages fit runs in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. runlog).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region create-run
// CreateRun inserts a run's metadata row.
func (s *Store) CreateRun(rec RunRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, created_at, seed, config_json, n_events, n_censored, n_covariates, acceptance, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.CreatedAt.Format(time.RFC3339Nano), int64(rec.Seed), nullIfEmpty(rec.ConfigJSON),
		rec.NumEvents, rec.NumCensored, rec.NumCovariates, rec.Acceptance, rec.ElapsedMs,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// #endregion create-run

// #region save-draws
// SaveDraws batch-inserts a run's posterior draws in one transaction.
func (s *Store) SaveDraws(runID string, draws []posterior.Draw) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO draws (run_id, draw_index, beta, alpha, hazard_trt, hazard_pbo, hazard_ratio, pred_trt, pred_pbo)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range draws {
		_, err := stmt.Exec(
			runID, d.Index, encodeFloats(d.Beta), d.Alpha,
			d.HazardTrt, d.HazardPbo, d.HazardRatio,
			encodeFloats(d.PredTrt), encodeFloats(d.PredPbo),
		)
		if err != nil {
			return fmt.Errorf("insert draw %d: %w", d.Index, err)
		}
	}
	return tx.Commit()
}

// #endregion save-draws

// #region get-run
// GetRun retrieves a run's metadata by id.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord
	var createdStr string
	var seed int64
	var configJSON sql.NullString
	var acceptance sql.NullFloat64
	var elapsed sql.NullInt64

	err := s.db.QueryRow(
		`SELECT run_id, created_at, seed, config_json, n_events, n_censored, n_covariates, acceptance, elapsed_ms
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&rec.RunID, &createdStr, &seed, &configJSON, &rec.NumEvents, &rec.NumCensored, &rec.NumCovariates, &acceptance, &elapsed)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}

	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	rec.Seed = uint64(seed)
	if configJSON.Valid {
		rec.ConfigJSON = configJSON.String
	}
	if acceptance.Valid {
		rec.Acceptance = acceptance.Float64
	}
	if elapsed.Valid {
		rec.ElapsedMs = elapsed.Int64
	}
	return rec, nil
}

// LatestRun retrieves the most recently created run.
func (s *Store) LatestRun() (RunRecord, error) {
	var runID string
	err := s.db.QueryRow(`SELECT run_id FROM runs ORDER BY created_at DESC LIMIT 1`).Scan(&runID)
	if err != nil {
		return RunRecord{}, fmt.Errorf("latest run: %w", err)
	}
	return s.GetRun(runID)
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	records := make([]RunRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetRun(id)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// #endregion get-run

// #region load-draws
// LoadDraws reads a run's posterior draws back in index order.
func (s *Store) LoadDraws(runID string) ([]posterior.Draw, error) {
	rows, err := s.db.Query(
		`SELECT draw_index, beta, alpha, hazard_trt, hazard_pbo, hazard_ratio, pred_trt, pred_pbo
		 FROM draws WHERE run_id = ? ORDER BY draw_index ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("load draws: %w", err)
	}
	defer rows.Close()

	var draws []posterior.Draw
	for rows.Next() {
		var d posterior.Draw
		var betaBlob, predTrtBlob, predPboBlob []byte
		if err := rows.Scan(&d.Index, &betaBlob, &d.Alpha, &d.HazardTrt, &d.HazardPbo, &d.HazardRatio, &predTrtBlob, &predPboBlob); err != nil {
			return nil, fmt.Errorf("scan draw: %w", err)
		}
		d.Beta = decodeFloats(betaBlob)
		d.PredTrt = decodeFloats(predTrtBlob)
		d.PredPbo = decodeFloats(predPboBlob)
		draws = append(draws, d)
	}
	return draws, rows.Err()
}

// #endregion load-draws

// #region float-encoding
func encodeFloats(v []float64) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodeFloats(b []byte) []float64 {
	if len(b) == 0 {
		return nil
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion float-encoding
