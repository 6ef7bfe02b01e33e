// Package jobstore is the optional durable extension (DS.8) behind
// JobStoreConfig.Backend: "none" (the default, matching spec.md §6's
// transience requirement — run bookkeeping lives only in
// orchestrator.Registry's in-memory map), "postgres", or "sqlite". When
// enabled it gives ingestion runs a record that survives process restarts,
// so a caller can ask "what happened to the run I kicked off an hour ago"
// after the process that ran it is gone.
//
// Adapted from internal/storage/{interface.go,postgres.go,sqlite.go}: same
// sqlx-over-pgx/sqlite3 shape, same ON CONFLICT-upsert-plus-append-only-log
// split as repositories/commits, retargeted from GitHub risk-assessment
// records to ingestion run records.
package jobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/devgraph/internal/config"
)

// ErrNotFound mirrors internal/storage's sentinel, unchanged in shape.
var ErrNotFound = errors.New("not found")

// Run is the durable record of one orchestrator.Job, flattened for storage:
// DerivedEdges and the rest of orchestrator.Result are carried as an opaque
// JSON blob rather than normalized columns, since nothing in this package
// ever queries into the result's internals — only the orchestrator itself
// interprets it; the store just needs to give it back unchanged.
type Run struct {
	ID           string
	RepoPath     string
	Status       string
	StartedAt    string // RFC3339; stored as text to stay driver-agnostic
	EndedAt      string // empty while the run is still in progress
	ErrorMessage string
	ResultJSON   string // empty until the run finishes
}

// Store is the run-persistence contract: SaveRun upserts a job's current
// state (called on start and on every status transition); SaveRunHistory
// appends an immutable record once a run finishes, so ListRuns can answer
// "what ran against this repo, ever" even after later runs overwrite the
// live row SaveRun maintains.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	SaveRunHistory(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, repoPath string, limit int) ([]*Run, error)
	Close() error
}

// New builds a Store from JobStoreConfig. An empty or "none" backend
// returns a NoopStore — ValidateConfig already rejects any other value
// reaching here with an unset DSN/path, so New trusts its input.
func New(cfg config.JobStoreConfig, logger *logrus.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "none":
		return NoopStore{}, nil
	case "postgres":
		return NewPostgresStore(cfg.PostgresDSN, logger)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unsupported job store backend %q", cfg.Backend)
	}
}

// NoopStore discards everything. It is the default Store so that callers
// never need a nil check — orchestrator.Pipeline always has a Store to
// write to, it's just one that remembers nothing.
type NoopStore struct{}

func (NoopStore) SaveRun(context.Context, *Run) error            { return nil }
func (NoopStore) SaveRunHistory(context.Context, *Run) error      { return nil }
func (NoopStore) GetRun(context.Context, string) (*Run, error)    { return nil, ErrNotFound }
func (NoopStore) ListRuns(context.Context, string, int) ([]*Run, error) {
	return nil, nil
}
func (NoopStore) Close() error { return nil }
