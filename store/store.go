// ABOUTME: Store is an append-only SQLite audit trail of pipeline stage
// ABOUTME: completions, rebuildable from nothing — it is a record of what
// ABOUTME: ran, not a source of truth the engine depends on to make progress.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/2389-research/conveyor/config"
	"github.com/2389-research/conveyor/status"
)

// Store is a thin wrapper around one SQLite handle, grounded on
// spec/store/sqlite.go's OpenSqlite (schema-on-open, WAL mode, narrow
// upsert/insert methods) and spec/store/manager.go's single-struct,
// single-root wrapper shape. Row ids use github.com/oklog/ulid/v2 — the
// teacher's id scheme for spec/card entities, here serving audit rows
// instead (see DESIGN.md).
type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at path and ensures the
// stage_events schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: set WAL mode: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS stage_events (
			event_id TEXT PRIMARY KEY,
			pipeline_id TEXT NOT NULL,
			pipeline_name TEXT NOT NULL,
			curr_stage INTEGER NOT NULL,
			status TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordStageCompletion inserts one audit row for a stage of p finishing
// with st. Called once per worker step from package manager's entry point
// when an audit Store is configured.
func (s *Store) RecordStageCompletion(p config.Pipeline, st status.Status, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO stage_events (event_id, pipeline_id, pipeline_name, curr_stage, status, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ulid.Make().String(),
		p.ID.String(),
		p.Name,
		p.CurrStage,
		st.String(),
		at.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store: record stage completion: %w", err)
	}
	return nil
}

// RunSummary is one pipeline's aggregate audit history, used by package
// report to build a human-readable run summary.
type RunSummary struct {
	PipelineID   string
	PipelineName string
	StageCount   int
	LastStatus   string
	LastRecorded time.Time
}

// Summarize aggregates stage_events into one RunSummary per distinct
// pipeline_id, ordered by most recently recorded first.
func (s *Store) Summarize() ([]RunSummary, error) {
	rows, err := s.db.Query(`
		SELECT pipeline_id, pipeline_name, COUNT(*), MAX(recorded_at)
		FROM stage_events
		GROUP BY pipeline_id, pipeline_name
		ORDER BY MAX(recorded_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: summarize: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var rs RunSummary
		var lastRecorded string
		if err := rows.Scan(&rs.PipelineID, &rs.PipelineName, &rs.StageCount, &lastRecorded); err != nil {
			return nil, fmt.Errorf("store: scan summary row: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, lastRecorded)
		if err != nil {
			return nil, fmt.Errorf("store: parse recorded_at %q: %w", lastRecorded, err)
		}
		rs.LastRecorded = parsed
		rs.LastStatus, err = s.lastStatusFor(rs.PipelineID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, rs)
	}
	return summaries, rows.Err()
}

func (s *Store) lastStatusFor(pipelineID string) (string, error) {
	var st string
	err := s.db.QueryRow(
		`SELECT status FROM stage_events WHERE pipeline_id = ? ORDER BY recorded_at DESC LIMIT 1`,
		pipelineID,
	).Scan(&st)
	if err != nil {
		return "", fmt.Errorf("store: last status for %s: %w", pipelineID, err)
	}
	return st, nil
}
