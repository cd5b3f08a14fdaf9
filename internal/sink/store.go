package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cours-de-latin/enumeratio/internal/assemble"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    input_path TEXT NOT NULL,
    input_hash TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT,
    status TEXT NOT NULL,
    excluded_pos TEXT,
    allowed_meters TEXT
);

CREATE INDEX IF NOT EXISTS runs_input_hash ON runs(input_hash, status);

CREATE TABLE IF NOT EXISTS lines (
    id INTEGER PRIMARY KEY,
    run_id TEXT NOT NULL REFERENCES runs(id),
    text TEXT,
    text_parsed TEXT,
    tags TEXT,
    line_number INTEGER,
    enumerativeness REAL,
    tokens INTEGER,
    top_case INTEGER,
    author_name TEXT,
    author_date TEXT,
    author_id INTEGER,
    work_name TEXT,
    work_edition TEXT,
    section_url TEXT,
    section_meter TEXT
);

CREATE INDEX IF NOT EXISTS lines_run ON lines(run_id);
`

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial" // finished, but some sections failed
	StatusFailed    = "failed"
)

// Run is one conversion of one input file.
type Run struct {
	ID            string
	InputPath     string
	InputHash     string
	StartedAt     time.Time
	FinishedAt    time.Time
	Status        string
	ExcludedPOS   []string
	AllowedMeters []string
}

// Store is a SQLite database of runs and their rows.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the database at path and applies the schema.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection serializes writers from concurrent pipeline workers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records run with status "running".
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	excluded, err := json.Marshal(nonNil(run.ExcludedPOS))
	if err != nil {
		return fmt.Errorf("marshal excluded pos: %w", err)
	}
	meters, err := json.Marshal(nonNil(run.AllowedMeters))
	if err != nil {
		return fmt.Errorf("marshal meters: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs(id, input_path, input_hash, started_at, status, excluded_pos, allowed_meters) VALUES(?,?,?,?,?,?,?)`,
		run.ID, run.InputPath, run.InputHash, run.StartedAt.UTC().Format(time.RFC3339), StatusRunning,
		string(excluded), string(meters),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun sets the final status of a run.
func (s *Store) FinishRun(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run: no run %q", id)
	}
	return nil
}

// GetRun loads a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var (
		run              Run
		started          string
		finished         sql.NullString
		excluded, meters sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, input_path, input_hash, started_at, finished_at, status, excluded_pos, allowed_meters FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.InputPath, &run.InputHash, &started, &finished, &run.Status, &excluded, &meters)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, started)
	if finished.Valid {
		run.FinishedAt, _ = time.Parse(time.RFC3339, finished.String)
	}
	if excluded.Valid {
		_ = json.Unmarshal([]byte(excluded.String), &run.ExcludedPOS)
	}
	if meters.Valid {
		_ = json.Unmarshal([]byte(meters.String), &run.AllowedMeters)
	}
	return run, nil
}

// Completed reports whether a finished run exists for the given input
// hash.
func (s *Store) Completed(ctx context.Context, inputHash string) (bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs WHERE input_hash = ? AND status IN (?, ?) LIMIT 1`,
		inputHash, StatusCompleted, StatusPartial,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query runs: %w", err)
	}
	return true, nil
}

// WriteBatch inserts the rows of b under runID in one transaction.
func (s *Store) WriteBatch(ctx context.Context, runID string, b assemble.Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lines(
		run_id, text, text_parsed, tags, line_number, enumerativeness, tokens, top_case,
		author_name, author_date, author_id, work_name, work_edition, section_url, section_meter
	) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range b.Rows {
		tags, err := r.TagsJSON()
		if err != nil {
			return err
		}
		var score any
		if r.Enumerativeness != nil {
			score = *r.Enumerativeness
		}
		if _, err := stmt.ExecContext(ctx,
			runID, r.Text, r.TextParsed, tags, r.LineNumber, score, r.Tokens, r.TopCase,
			r.AuthorName, r.AuthorDate, r.AuthorID, r.WorkName, r.WorkEdition, r.SectionURL, r.SectionMeter,
		); err != nil {
			return fmt.Errorf("insert line: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// CountLines returns the number of rows stored for runID.
func (s *Store) CountLines(ctx context.Context, runID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lines WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count lines: %w", err)
	}
	return n, nil
}

// Lines returns a Sink that writes into s under runID. Closing it leaves
// the Store open.
func (s *Store) Lines(runID string) Sink {
	return runSink{store: s, runID: runID}
}

type runSink struct {
	store *Store
	runID string
}

func (r runSink) Write(ctx context.Context, b assemble.Batch) error {
	return r.store.WriteBatch(ctx, r.runID, b)
}

func (r runSink) Close() error { return nil }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
