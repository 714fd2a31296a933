// Package history persists executed plan results to SQLite. It is host-side
// infrastructure: the planning core never depends on it, and execution works
// without it. The CLI records each run here after the engine returns.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"actionplan/internal/logging"
	"actionplan/internal/types"
)

// Store records executed plans and their per-action results.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Run is one recorded plan execution.
type Run struct {
	ID         int64                `json:"id"`
	PlanID     string               `json:"plan_id"`
	Prompt     string               `json:"prompt"`
	Success    bool                 `json:"success"`
	Duration   time.Duration        `json:"duration"`
	ExecutedAt time.Time            `json:"executed_at"`
	Results    []types.ActionResult `json:"results"`
}

// Open initializes the SQLite database at the given path.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryHistory, "Open")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.HistoryDebug("Open: failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.HistoryDebug("Open: failed to set sqlite journal_mode=WAL: %v", err)
	}

	store := &Store{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.History("Open: history store ready at %s", path)
	return store, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS plan_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		plan_id TEXT NOT NULL,
		prompt TEXT NOT NULL DEFAULT '',
		success INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		executed_at DATETIME NOT NULL,
		results TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_plan_runs_plan_id ON plan_runs(plan_id);
	CREATE INDEX IF NOT EXISTS idx_plan_runs_executed_at ON plan_runs(executed_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// SaveResult records one executed plan. The prompt is stored alongside for
// later inspection; pass empty when the plan was not compiled from a prompt.
func (s *Store) SaveResult(prompt string, result *types.PlanResult) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(result.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO plan_runs (plan_id, prompt, success, duration_ms, executed_at, results)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.PlanID,
		prompt,
		boolToInt(result.Success),
		result.Duration.Milliseconds(),
		result.ExecutedAt.UTC().Format(time.RFC3339Nano),
		string(payload),
	)
	if err != nil {
		logging.HistoryError("SaveResult: failed to insert run for plan %s: %v", result.PlanID, err)
		return fmt.Errorf("failed to save run: %w", err)
	}

	logging.HistoryDebug("SaveResult: recorded plan %s (%d results)", result.PlanID, len(result.Results))
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, plan_id, prompt, success, duration_ms, executed_at, results
		 FROM plan_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			success    int
			durationMS int64
			executedAt string
			results    string
		)
		if err := rows.Scan(&run.ID, &run.PlanID, &run.Prompt, &success, &durationMS, &executedAt, &results); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Success = success != 0
		run.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, executedAt); err == nil {
			run.ExecutedAt = ts
		}
		if err := json.Unmarshal([]byte(results), &run.Results); err != nil {
			logging.HistoryError("Recent: corrupt results payload for run %d: %v", run.ID, err)
			run.Results = nil
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
