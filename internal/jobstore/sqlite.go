package jobstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLiteStore persists runs to SQLite, for local/single-node deployments —
// grounded on internal/storage/sqlite.go's NewSQLiteStore (directory
// creation, WAL mode, embedded initSchema) with the same structure, just a
// run/run-history schema instead of repositories/commits/files.
type SQLiteStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init job store schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingestion_runs (
		id TEXT PRIMARY KEY,
		repo_path TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		error_message TEXT,
		result_json TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_ingestion_runs_repo ON ingestion_runs(repo_path);

	CREATE TABLE IF NOT EXISTS ingestion_run_history (
		run_id TEXT NOT NULL,
		repo_path TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		error_message TEXT,
		result_json TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_ingestion_run_history_repo ON ingestion_run_history(repo_path);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO ingestion_runs (id, repo_path, status, started_at, ended_at, error_message, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			ended_at = excluded.ended_at,
			error_message = excluded.error_message,
			result_json = excluded.result_json
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.RepoPath, run.Status, run.StartedAt,
		nullableString(run.EndedAt), nullableString(run.ErrorMessage), nullableString(run.ResultJSON))
	return err
}

func (s *SQLiteStore) SaveRunHistory(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO ingestion_run_history (run_id, repo_path, status, started_at, ended_at, error_message, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.RepoPath, run.Status, run.StartedAt,
		nullableString(run.EndedAt), nullableString(run.ErrorMessage), nullableString(run.ResultJSON))
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var row runRow
	query := `SELECT * FROM ingestion_runs WHERE id = ?`
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toRun(), nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, repoPath string, limit int) ([]*Run, error) {
	var rows []runRow
	query := `SELECT run_id AS id, repo_path, status, started_at, ended_at, error_message, result_json
		FROM ingestion_run_history WHERE repo_path = ? ORDER BY started_at DESC LIMIT ?`
	if err := s.db.SelectContext(ctx, &rows, query, repoPath, limit); err != nil {
		return nil, err
	}
	runs := make([]*Run, len(rows))
	for i, r := range rows {
		runs[i] = r.toRun()
	}
	return runs, nil
}
