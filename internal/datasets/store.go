package datasets

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists built datasets so the dashboards can read them without
// touching job output files. Each build is one run, identified by a
// generated run ID.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("datasets: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("datasets: opening DB: %w", err)
	}

	store := NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA busy_timeout = 5000;`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS dashboard_rows (
			run_id TEXT NOT NULL,
			date TEXT NOT NULL,
			os TEXT NOT NULL,
			country TEXT NOT NULL,
			device TEXT NOT NULL,
			operator TEXT NOT NULL,
			count INTEGER NOT NULL,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_dashboard_rows_run ON dashboard_rows(run_id, date);`,
		`CREATE TABLE IF NOT EXISTS condition_counts (
			run_id TEXT NOT NULL,
			cohort TEXT NOT NULL,
			condition TEXT NOT NULL,
			count INTEGER NOT NULL,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_condition_counts_run ON condition_counts(run_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("datasets: initializing schema: %w", err)
		}
	}
	return nil
}

// beginRun records a new run and returns its ID.
func (s *Store) beginRun(ctx context.Context, tx *sql.Tx, kind string) (string, error) {
	runID := uuid.NewString()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, kind, created_at) VALUES (?, ?, ?)`,
		runID, kind, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("datasets: recording run: %w", err)
	}
	return runID, nil
}

// SaveDashboard stores one dashboard build and returns its run ID.
func (s *Store) SaveDashboard(ctx context.Context, rows []DashboardRow) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("datasets: starting transaction: %w", err)
	}
	defer tx.Rollback()

	runID, err := s.beginRun(ctx, tx, "dashboard")
	if err != nil {
		return "", err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dashboard_rows (run_id, date, os, country, device, operator, count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("datasets: preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			runID, row.Date, row.OS, row.Country, row.Device, row.Operator, row.Count); err != nil {
			return "", fmt.Errorf("datasets: inserting dashboard row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("datasets: committing dashboard: %w", err)
	}
	return runID, nil
}

// SaveConditions stores per-cohort condition counts under a run.
func (s *Store) SaveConditions(ctx context.Context, kind string, conditions map[string]map[string]int64) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("datasets: starting transaction: %w", err)
	}
	defer tx.Rollback()

	runID, err := s.beginRun(ctx, tx, kind)
	if err != nil {
		return "", err
	}
	for cohort, counts := range conditions {
		for condition, n := range counts {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO condition_counts (run_id, cohort, condition, count) VALUES (?, ?, ?, ?)`,
				runID, cohort, condition, n); err != nil {
				return "", fmt.Errorf("datasets: inserting condition: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("datasets: committing conditions: %w", err)
	}
	return runID, nil
}

// LoadDashboard reads back a stored dashboard build in row order.
func (s *Store) LoadDashboard(ctx context.Context, runID string) ([]DashboardRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, os, country, device, operator, count
		 FROM dashboard_rows WHERE run_id = ?
		 ORDER BY date, os, country, device, operator`, runID)
	if err != nil {
		return nil, fmt.Errorf("datasets: querying dashboard: %w", err)
	}
	defer rows.Close()

	var out []DashboardRow
	for rows.Next() {
		var row DashboardRow
		if err := rows.Scan(&row.Date, &row.OS, &row.Country, &row.Device, &row.Operator, &row.Count); err != nil {
			return nil, fmt.Errorf("datasets: scanning dashboard row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("datasets: reading dashboard rows: %w", err)
	}
	return out, nil
}
