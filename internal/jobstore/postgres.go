package jobstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// PostgresStore persists runs to PostgreSQL, grounded on
// internal/storage/postgres.go's NewPostgresStore (sqlx.Connect over pgx,
// the same pool-size/idle-timeout defaults) and its
// NamedExecContext/ON CONFLICT upsert pattern.
type PostgresStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

func NewPostgresStore(dsn string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init job store schema: %w", err)
	}

	return &PostgresStore{db: db, logger: logger}, nil
}

const postgresSchema = `
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

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO ingestion_runs (id, repo_path, status, started_at, ended_at, error_message, result_json)
		VALUES (:id, :repopath, :status, :startedat, :endedat, :errormessage, :resultjson)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			ended_at = EXCLUDED.ended_at,
			error_message = EXCLUDED.error_message,
			result_json = EXCLUDED.result_json
	`
	_, err := s.db.NamedExecContext(ctx, query, runParams(run))
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveRunHistory(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO ingestion_run_history (run_id, repo_path, status, started_at, ended_at, error_message, result_json)
		VALUES (:id, :repopath, :status, :startedat, :endedat, :errormessage, :resultjson)
	`
	_, err := s.db.NamedExecContext(ctx, query, runParams(run))
	if err != nil {
		return fmt.Errorf("save run history: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var row runRow
	query := `SELECT * FROM ingestion_runs WHERE id = $1`
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return row.toRun(), nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, repoPath string, limit int) ([]*Run, error) {
	var rows []runRow
	query := `SELECT run_id AS id, repo_path, status, started_at, ended_at, error_message, result_json
		FROM ingestion_run_history WHERE repo_path = $1 ORDER BY started_at DESC LIMIT $2`
	if err := s.db.SelectContext(ctx, &rows, query, repoPath, limit); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	runs := make([]*Run, len(rows))
	for i, r := range rows {
		runs[i] = r.toRun()
	}
	return runs, nil
}

// runRow mirrors the schema's column names for sqlx scanning; Run itself
// uses Go-idiomatic field names that don't round-trip through db tags
// cleanly, so the two stay separate rather than forcing `db:"..."` tags
// onto the exported API type.
type runRow struct {
	ID           string         `db:"id"`
	RepoPath     string         `db:"repo_path"`
	Status       string         `db:"status"`
	StartedAt    string         `db:"started_at"`
	EndedAt      sql.NullString `db:"ended_at"`
	ErrorMessage sql.NullString `db:"error_message"`
	ResultJSON   sql.NullString `db:"result_json"`
}

func (r runRow) toRun() *Run {
	return &Run{
		ID:           r.ID,
		RepoPath:     r.RepoPath,
		Status:       r.Status,
		StartedAt:    r.StartedAt,
		EndedAt:      r.EndedAt.String,
		ErrorMessage: r.ErrorMessage.String,
		ResultJSON:   r.ResultJSON.String,
	}
}

func runParams(run *Run) map[string]interface{} {
	return map[string]interface{}{
		"id":           run.ID,
		"repopath":     run.RepoPath,
		"status":       run.Status,
		"startedat":    run.StartedAt,
		"endedat":      nullableString(run.EndedAt),
		"errormessage": nullableString(run.ErrorMessage),
		"resultjson":   nullableString(run.ResultJSON),
	}
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
