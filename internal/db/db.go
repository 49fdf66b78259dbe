// Package db keeps an SQLite index of catalog builds: one row per builder
// run and the latest catalog row of every object.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the database at path and applies any
// pending migrations.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenDB opens the database at path without touching its schema, for the
// migrate subcommand.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases coherent across calls.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}
	return &DB{sqlDB}, nil
}

// Run is one invocation of the catalog builder.
type Run struct {
	ID           string
	Version      string
	TestMode     bool
	StartedAt    time.Time
	FinishedAt   *time.Time
	ObjectCount  int
	PagesWritten int
	PagesSkipped int
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// RunTx is a builder run in progress. The run row and every object row
// written through it are committed together by Finish, so a build that
// fails leaves the index as it was.
type RunTx struct {
	tx  *sql.Tx
	Run *Run
}

// BeginRun opens a transaction and records the start of a builder run
// under a fresh run id.
func (db *DB) BeginRun(version string, testMode bool, started time.Time) (*RunTx, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}
	run := &Run{
		ID:        uuid.NewString(),
		Version:   version,
		TestMode:  testMode,
		StartedAt: started,
	}
	_, err = tx.Exec(
		`INSERT INTO catalog_runs (run_id, version, test_mode, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Version, run.TestMode, unixSeconds(started),
	)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return &RunTx{tx: tx, Run: run}, nil
}

// UpsertObject stores o within the run.
func (rt *RunTx) UpsertObject(o Object) error {
	return upsertObject(rt.tx, o)
}

// Finish stores the run's final counts and commits.
func (rt *RunTx) Finish(finished time.Time) error {
	run := rt.Run
	res, err := rt.tx.Exec(
		`UPDATE catalog_runs
		    SET finished_at = ?, object_count = ?, pages_written = ?, pages_skipped = ?
		  WHERE run_id = ?`,
		unixSeconds(finished), run.ObjectCount, run.PagesWritten, run.PagesSkipped, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", run.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	if err := rt.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	run.FinishedAt = &finished
	return nil
}

// Rollback discards the run. It is a no-op after Finish.
func (rt *RunTx) Rollback() error {
	if err := rt.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// Runs lists recorded runs, most recent first.
func (db *DB) Runs() ([]Run, error) {
	rows, err := db.Query(`
		SELECT run_id, version, test_mode, started_at, finished_at, object_count, pages_written, pages_skipped
		  FROM catalog_runs
		 ORDER BY started_at DESC, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started float64
		var finished sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.Version, &r.TestMode, &started, &finished,
			&r.ObjectCount, &r.PagesWritten, &r.PagesSkipped); err != nil {
			return nil, err
		}
		r.StartedAt = fromUnixSeconds(started)
		if finished.Valid {
			t := fromUnixSeconds(finished.Float64)
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Object is the indexed form of one catalog row.
type Object struct {
	Name        string
	RunID       string
	RepoFolder  string
	Row         json.RawMessage
	NumPhoto    int
	NumSpectra  int
	ClaimedType string
	UpdatedAt   time.Time
}

// upsertObject stores o, replacing any earlier row for the same name.
func upsertObject(ex execer, o Object) error {
	if o.Name == "" {
		return errors.New("object name is required")
	}
	_, err := ex.Exec(`
		INSERT INTO catalog_objects (name, run_id, repo_folder, row_json, num_photo, num_spectra, claimed_type, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			run_id = excluded.run_id,
			repo_folder = excluded.repo_folder,
			row_json = excluded.row_json,
			num_photo = excluded.num_photo,
			num_spectra = excluded.num_spectra,
			claimed_type = excluded.claimed_type,
			updated_at = excluded.updated_at`,
		o.Name, o.RunID, o.RepoFolder, string(o.Row), o.NumPhoto, o.NumSpectra, o.ClaimedType, unixSeconds(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert object %s: %w", o.Name, err)
	}
	return nil
}

// TypeCounts tallies indexed objects by claimed type.
func (db *DB) TypeCounts() (map[string]int, error) {
	rows, err := db.Query(`SELECT claimed_type, COUNT(*) FROM catalog_objects GROUP BY claimed_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func fromUnixSeconds(s float64) time.Time {
	return time.Unix(0, int64(s*1e9)).UTC()
}
