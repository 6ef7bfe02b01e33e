package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rohankatakam/devgraph/internal/apperrors"
	"github.com/rohankatakam/devgraph/internal/jobstore"
)

// JobStatus is a run's lifecycle state.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Job is one tracked ingestion run. It exists independently of whatever
// durable job store (DS.8) is configured — the registry is always the
// authoritative in-memory record of "is a run against this repo already in
// progress", which a durable store alone can't answer safely across
// concurrent callers in the same process.
type Job struct {
	ID        string
	RepoPath  string
	Status    JobStatus
	StartedAt time.Time
	EndedAt   time.Time
	Result    *Result
	Err       error

	cancel context.CancelFunc
}

// Registry tracks in-flight and completed runs, keyed both by run id and by
// repo path, and rejects a second concurrent run against a repo already
// being ingested (§6: such a request is rejected outright, not queued
// behind the first).
type Registry struct {
	mu     sync.Mutex
	byRepo map[string]*Job
	byID   map[string]*Job
	logger *slog.Logger
	store  jobstore.Store
}

// NewRegistry returns an empty, ready-to-use Registry. store may be
// jobstore.NoopStore{} (the DS.8 default) — the registry calls it
// unconditionally either way, so enabling a durable backend is a config
// change, not a code change.
func NewRegistry(store jobstore.Store) *Registry {
	return &Registry{
		byRepo: make(map[string]*Job),
		byID:   make(map[string]*Job),
		logger: slog.Default().With("component", "job_registry"),
		store:  store,
	}
}

// Start registers a new running job for repoPath and returns a context
// derived from ctx whose cancellation is wired to Cancel. It fails with a
// Validation-typed error if repoPath already has a job in the running
// state.
func (r *Registry) Start(ctx context.Context, repoPath string) (*Job, context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byRepo[repoPath]; ok && existing.Status == JobRunning {
		return nil, nil, apperrors.ValidationErrorf(
			"ingestion already running for %s (job %s, started %s)",
			repoPath, existing.ID, existing.StartedAt.Format(time.RFC3339))
	}

	runCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:        uuid.NewString(),
		RepoPath:  repoPath,
		Status:    JobRunning,
		StartedAt: time.Now().UTC(),
		cancel:    cancel,
	}
	r.byRepo[repoPath] = job
	r.byID[job.ID] = job
	r.logger.Info("job started", "job_id", job.ID, "repo_path", repoPath)

	if err := r.store.SaveRun(ctx, job.toRun()); err != nil {
		r.logger.Warn("job store save failed", "job_id", job.ID, "error", err)
	}
	return job, runCtx, nil
}

// Finish records a job's terminal outcome. result is nil on failure.
func (r *Registry) Finish(job *Job, result *Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job.EndedAt = time.Now().UTC()
	job.Result = result
	job.Err = err
	switch {
	case errors.Is(err, context.Canceled):
		job.Status = JobCancelled
	case err != nil:
		job.Status = JobFailed
	default:
		job.Status = JobSucceeded
	}
	r.logger.Info("job finished", "job_id", job.ID, "status", job.Status, "duration", job.EndedAt.Sub(job.StartedAt).String())

	run := job.toRun()
	ctx := context.Background()
	if err := r.store.SaveRun(ctx, run); err != nil {
		r.logger.Warn("job store save failed", "job_id", job.ID, "error", err)
	}
	if err := r.store.SaveRunHistory(ctx, run); err != nil {
		r.logger.Warn("job store history save failed", "job_id", job.ID, "error", err)
	}
}

// toRun flattens a Job into jobstore's storage shape. Called with r.mu
// already held by Start/Finish.
func (j *Job) toRun() *jobstore.Run {
	run := &jobstore.Run{
		ID:        j.ID,
		RepoPath:  j.RepoPath,
		Status:    string(j.Status),
		StartedAt: j.StartedAt.Format(time.RFC3339),
	}
	if !j.EndedAt.IsZero() {
		run.EndedAt = j.EndedAt.Format(time.RFC3339)
	}
	if j.Err != nil {
		run.ErrorMessage = j.Err.Error()
	}
	if j.Result != nil {
		if b, err := json.Marshal(j.Result); err == nil {
			run.ResultJSON = string(b)
		}
	}
	return run
}

// Cancel requests cancellation of a running job's context. It is a no-op
// error (not a panic) to cancel a job that has already finished or never
// existed, since a cancel request racing a job's natural completion is
// expected, not exceptional.
func (r *Registry) Cancel(jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.byID[jobID]
	if !ok {
		return apperrors.ValidationErrorf("unknown job %s", jobID)
	}
	if job.Status != JobRunning {
		return apperrors.ValidationErrorf("job %s is not running (status: %s)", jobID, job.Status)
	}
	job.cancel()
	return nil
}

// Get returns a tracked job by id.
func (r *Registry) Get(jobID string) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.byID[jobID]
	return job, ok
}

// List returns every tracked job, most recently started first.
func (r *Registry) List() []*Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]*Job, 0, len(r.byID))
	for _, j := range r.byID {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].StartedAt.After(jobs[k].StartedAt) })
	return jobs
}

// RunTracked starts a job for repoPath, runs fn under the job's cancellable
// context, and records the outcome — the shape cmd/devgraph-ingest's start
// and serve commands drive the pipeline through.
func (r *Registry) RunTracked(ctx context.Context, repoPath string, fn func(context.Context, *Job) (*Result, error)) (*Job, error) {
	job, runCtx, err := r.Start(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	result, runErr := fn(runCtx, job)
	r.Finish(job, result, runErr)
	return job, runErr
}
