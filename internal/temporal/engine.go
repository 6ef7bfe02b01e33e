// Package temporal implements the Temporal Engine (Stage 4): it replays a
// repository's commit history into GitCommit, TOUCHED, and REFACTORED_TO
// graph writes, one transaction per commit so a commit's files never land
// half-written. Grounded on internal/temporal/git_history.go
// (ParseGitHistory) and internal/ingestion/orchestrator.go's phased,
// worker-pooled run shape, rebuilt against internal/gitlog's streaming
// commit walk and internal/graphstore's CypherBuilder/Backend.
package temporal

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/devgraph/internal/gitlog"
	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// errCommitLimitReached stops ListCommits' walk once CommitLimit commits
// have been queued; Ingest treats it as a normal, non-error completion.
var errCommitLimitReached = errors.New("commit limit reached")

// Engine replays commit history into the graph.
type Engine struct {
	backend     graphstore.Backend
	maxWorkers  int
	commitLimit int
	metrics     *Metrics
}

// NewEngine binds an Engine to a Backend, a worker-pool size for parallel
// commit batches (§4.4 step 3), and commitLimit — the Stage 4 ceiling from
// spec.md §6 (0 or negative means unlimited).
func NewEngine(backend graphstore.Backend, maxWorkers, commitLimit int, metrics *Metrics) *Engine {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Engine{backend: backend, maxWorkers: maxWorkers, commitLimit: commitLimit, metrics: metrics}
}

// Result summarises one Ingest run.
type Result struct {
	CommitsProcessed int
	LastCommitTS     string
}

// Ingest walks repoPath's history strictly after sinceTS (pass "" for a
// full bootstrap) and writes each commit's GitCommit/File/TOUCHED/
// REFACTORED_TO graph in its own transaction. Commits are batched
// maxWorkers at a time and written concurrently via errgroup, but each
// commit's own writes stay atomic (§4.4 step 3: "all writes for a single
// commit occur in one transaction").
func (e *Engine) Ingest(ctx context.Context, repoPath, sinceTS string) (Result, error) {
	branch, err := gitlog.CurrentBranch(ctx, repoPath)
	if err != nil {
		return Result{}, fmt.Errorf("detect branch: %w", err)
	}

	var result Result
	batch := make([]gitlog.Commit, 0, e.maxWorkers)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.maxWorkers)
		for _, c := range batch {
			c := c
			g.Go(func() error {
				return e.writeCommit(gctx, c, branch)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		result.CommitsProcessed += len(batch)
		result.LastCommitTS = batch[len(batch)-1].Timestamp.UTC().Format("2006-01-02T15:04:05Z")
		batch = batch[:0]
		return nil
	}

	seen := 0
	err = gitlog.ListCommits(ctx, repoPath, sinceTS, func(c gitlog.Commit) error {
		batch = append(batch, c)
		seen++
		if e.commitLimit > 0 && seen >= e.commitLimit {
			if ferr := flush(); ferr != nil {
				return ferr
			}
			return errCommitLimitReached
		}
		if len(batch) < e.maxWorkers {
			return nil
		}
		return flush()
	})
	if err != nil && !errors.Is(err, errCommitLimitReached) {
		return result, fmt.Errorf("list commits: %w", err)
	}
	if !errors.Is(err, errCommitLimitReached) {
		if ferr := flush(); ferr != nil {
			return result, ferr
		}
	}

	return result, nil
}

// writeCommit builds every query a single commit needs (the GitCommit
// node, each touched File, each TOUCHED edge, and any REFACTORED_TO edges
// for renames) and submits them as one transaction.
func (e *Engine) writeCommit(ctx context.Context, c gitlog.Commit, branch string) error {
	var queries []graphstore.QueryWithParams

	commitBuilder := graphstore.NewCypherBuilder()
	ts := c.Timestamp.UTC().Format("2006-01-02T15:04:05Z")
	commitQuery, err := commitBuilder.BuildMergeNode("GitCommit", "hash", c.Hash, map[string]any{
		"uid":       c.Hash,
		"hash":      c.Hash,
		"author":    c.Author,
		"email":     c.Email,
		"timestamp": ts,
		"branch":    branch,
		"message":   c.Message,
	})
	if err != nil {
		return fmt.Errorf("build commit query: %w", err)
	}
	queries = append(queries, graphstore.QueryWithParams{Query: commitQuery, Params: commitBuilder.Params()})

	for _, fc := range c.Changes {
		fileBuilder := graphstore.NewCypherBuilder()
		fileQuery, err := fileBuilder.BuildMergeNode("File", "path", fc.Path, map[string]any{
			"uid":  fc.Path,
			"path": fc.Path,
		})
		if err != nil {
			return fmt.Errorf("build file query: %w", err)
		}
		queries = append(queries, graphstore.QueryWithParams{Query: fileQuery, Params: fileBuilder.Params()})

		touchedBuilder := graphstore.NewCypherBuilder()
		touchedQuery, err := touchedBuilder.BuildMergeEdge(
			"GitCommit", "hash", c.Hash,
			"File", "path", fc.Path,
			"TOUCHED",
			map[string]any{
				"timestamp":   ts,
				"change_type": fc.Status,
				"additions":   fc.Additions,
				"deletions":   fc.Deletions,
			},
		)
		if err != nil {
			return fmt.Errorf("build touched query: %w", err)
		}
		queries = append(queries, graphstore.QueryWithParams{Query: touchedQuery, Params: touchedBuilder.Params()})

		if fc.Status == "R" && fc.OldPath != "" {
			oldFileBuilder := graphstore.NewCypherBuilder()
			oldFileQuery, err := oldFileBuilder.BuildMergeNode("File", "path", fc.OldPath, map[string]any{
				"uid":  fc.OldPath,
				"path": fc.OldPath,
			})
			if err != nil {
				return fmt.Errorf("build old file query: %w", err)
			}
			queries = append(queries, graphstore.QueryWithParams{Query: oldFileQuery, Params: oldFileBuilder.Params()})

			renameBuilder := graphstore.NewCypherBuilder()
			renameQuery, err := renameBuilder.BuildMergeEdge(
				"File", "path", fc.OldPath,
				"File", "path", fc.Path,
				"REFACTORED_TO",
				map[string]any{
					"timestamp": ts,
					"sources":   []string{"git-rename"},
				},
			)
			if err != nil {
				return fmt.Errorf("build refactored_to query: %w", err)
			}
			queries = append(queries, graphstore.QueryWithParams{Query: renameQuery, Params: renameBuilder.Params()})
		}
	}

	if err := e.backend.ExecuteBatchWithParams(ctx, queries); err != nil {
		return fmt.Errorf("write commit %s: %w", c.Hash, err)
	}
	if e.metrics != nil {
		e.metrics.RecordCommit()
	}
	return nil
}
