// Package store persists segmentation runs in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	created_at       TEXT NOT NULL,
	sources_json     TEXT NOT NULL,
	line_count       INTEGER NOT NULL,
	cost_model       TEXT NOT NULL,
	best_k           INTEGER NOT NULL,
	best_aic         REAL NOT NULL,
	breakpoints_json TEXT NOT NULL,
	diagnostics_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("run not found")

// Diagnostic is the stored form of one model-selection row.
type Diagnostic struct {
	K           int     `json:"k"`
	Breakpoints []int   `json:"breakpoints,omitempty"`
	Cost        float64 `json:"cost"`
	MSE         float64 `json:"mse"`
	AIC         float64 `json:"aic"`
	Degenerate  bool    `json:"degenerate,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Run is one persisted analysis.
type Run struct {
	ID          string
	CreatedAt   time.Time
	Sources     []string
	Lines       int
	CostModel   string
	BestK       int
	BestAIC     float64
	Breakpoints []int
	Diagnostics []Diagnostic
}

// Store manages analysis runs in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts run, assigning its ID and CreatedAt.
func (s *Store) Save(run Run) (Run, error) {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	sources, err := json.Marshal(nonNil(run.Sources))
	if err != nil {
		return Run{}, fmt.Errorf("marshal sources: %w", err)
	}
	bkps, err := json.Marshal(nonNil(run.Breakpoints))
	if err != nil {
		return Run{}, fmt.Errorf("marshal breakpoints: %w", err)
	}
	diags, err := json.Marshal(nonNil(run.Diagnostics))
	if err != nil {
		return Run{}, fmt.Errorf("marshal diagnostics: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, created_at, sources_json, line_count, cost_model, best_k, best_aic, breakpoints_json, diagnostics_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(timeLayout), string(sources), run.Lines,
		run.CostModel, run.BestK, run.BestAIC, string(bkps), string(diags),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

// Get loads a run by id.
func (s *Store) Get(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT run_id, created_at, sources_json, line_count, cost_model, best_k, best_aic, breakpoints_json, diagnostics_json
		 FROM runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// List returns the most recent runs first. limit <= 0 returns all.
func (s *Store) List(limit int) ([]Run, error) {
	q := `SELECT run_id, created_at, sources_json, line_count, cost_model, best_k, best_aic, breakpoints_json, diagnostics_json
		 FROM runs ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run                  Run
		created              string
		sources, bkps, diags string
	)
	if err := sc.Scan(&run.ID, &created, &sources, &run.Lines, &run.CostModel, &run.BestK, &run.BestAIC, &bkps, &diags); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = t
	if err := json.Unmarshal([]byte(sources), &run.Sources); err != nil {
		return Run{}, fmt.Errorf("unmarshal sources: %w", err)
	}
	if err := json.Unmarshal([]byte(bkps), &run.Breakpoints); err != nil {
		return Run{}, fmt.Errorf("unmarshal breakpoints: %w", err)
	}
	if err := json.Unmarshal([]byte(diags), &run.Diagnostics); err != nil {
		return Run{}, fmt.Errorf("unmarshal diagnostics: %w", err)
	}
	return run, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
