// Package deriver implements the Relationship Deriver (Stage 8 in spec.md's
// own numbering, the seventh pipeline component in build order): it reads
// already-ingested structural and temporal data and produces derived edges
// whose value is the evidence behind them. Grounded on 
// internal/graph/temporal_correlator.go (time-windowed evidence scoring
// with per-signal confidence and evidence tags) and
// internal/graph/semantic_matcher.go / linking_quality_score.go
// (multi-signal weighted scoring), reshaped around spec.md §4.7's
// complementary-probability composition rule instead of additive boosting.
package deriver

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// Per-source confidence weights (§4.7, "per-source confidence in brackets").
const (
	ConfCommitMessageMatch = 0.9
	ConfDocMention         = 0.5
	ConfCodeComment        = 0.8
	ConfSprintWindow       = 0.3
	ConfEvolvesCommitMsg   = 0.9
	ConfEvolvesDocMention  = 0.6
	ConfImportOverlap      = 0.8
	ConfMentionExact       = 0.7
	ConfMentionPartial     = 0.4
	ConfRelatesToLibrary   = 0.4
)

// RequirementIDPattern matches the Requirement natural key's canonical
// form, used throughout this package to pull requirement ids out of free
// text (commit messages, chunk content).
var RequirementIDPattern = regexp.MustCompile(`FR-\d+-\d+`)

// Deriver runs evidence families against the graph store. Each family is
// independently watermarked (§4.7 "Incrementality") and can run under
// dry_run, in which case candidate evidence is counted but never written.
type Deriver struct {
	backend graphstore.Backend
	runID   string
	dryRun  bool
}

// NewDeriver binds a Deriver to the graph store and the run that will own
// any watermark advances it makes.
func NewDeriver(backend graphstore.Backend, runID string, dryRun bool) *Deriver {
	return &Deriver{backend: backend, runID: runID, dryRun: dryRun}
}

// familyResult is one evidence instance a family's candidate query yields:
// an edge endpoint pair, the source tag and per-source confidence to
// compose, and the event timestamp driving both the edge's
// first/last_seen_ts and the family's watermark advance.
type familyResult struct {
	FromRef    string
	ToRef      string
	Source     string
	Confidence float64
	Timestamp  string
}

// runFamily writes (or, under dry_run, merely counts) every row in results
// through MergeEvidence, then advances watermarkKey to the latest
// timestamp observed. The Backend interface has no explicit
// begin-then-rollback primitive, so dry_run here means "never call
// MergeEvidence or AdvanceWatermark" rather than "run the write inside a
// transaction that is then discarded" — the practical effect spec.md §4.7
// asks for (a dry run changes nothing) without growing Backend a
// transaction-scoped API for a single caller.
func (d *Deriver) runFamily(ctx context.Context, watermarkKey, edgeLabel string, results []familyResult) (int, error) {
	if len(results) == 0 {
		return 0, nil
	}

	maxTS := results[0].Timestamp
	for _, r := range results {
		if r.Timestamp > maxTS {
			maxTS = r.Timestamp
		}
		if d.dryRun {
			continue
		}
		if err := d.backend.MergeEvidence(ctx, graphstore.GraphEdge{
			Label:      edgeLabel,
			From:       r.FromRef,
			To:         r.ToRef,
			Sources:    []string{r.Source},
			Confidence: r.Confidence,
			LastSeenTS: r.Timestamp,
		}); err != nil {
			return 0, fmt.Errorf("merge %s evidence %s -> %s: %w", edgeLabel, r.FromRef, r.ToRef, err)
		}
	}

	if !d.dryRun {
		if err := graphstore.AdvanceWatermark(ctx, d.backend, watermarkKey, maxTS, d.runID); err != nil {
			return 0, fmt.Errorf("advance watermark %s: %w", watermarkKey, err)
		}
	}

	return len(results), nil
}

// watermarkSince returns the stored watermark's last_ts for key, or "" if
// the family has never run (every valid ISO-8601 timestamp string compares
// greater than "", so a plain string inequality in Cypher still selects
// everything on a first run).
func (d *Deriver) watermarkSince(ctx context.Context, key string) (string, error) {
	wm, err := graphstore.GetWatermark(ctx, d.backend, key)
	if err != nil {
		return "", fmt.Errorf("read watermark %s: %w", key, err)
	}
	return wm.LastTS, nil
}

// ensureRequirements MERGEs a bare Requirement node for every id, so that
// evidence sourced from free text (commit messages, code comments) has
// something for MergeEvidence's endpoint MATCH to find — per spec.md §9,
// requirements synthesised this way are created even when nothing ever
// links them with PART_OF.
func (d *Deriver) ensureRequirements(ctx context.Context, ids []string) error {
	ids = dedupeStrings(ids)
	if len(ids) == 0 || d.dryRun {
		return nil
	}

	queries := make([]graphstore.QueryWithParams, 0, len(ids))
	for _, id := range ids {
		builder := graphstore.NewCypherBuilder()
		q, err := builder.BuildMergeNode("Requirement", "id", id, map[string]any{"uid": id, "id": id})
		if err != nil {
			return fmt.Errorf("build requirement node %s: %w", id, err)
		}
		queries = append(queries, graphstore.QueryWithParams{Query: q, Params: builder.Params()})
	}
	if err := d.backend.ExecuteBatchWithParams(ctx, queries); err != nil {
		return fmt.Errorf("ensure requirement nodes: %w", err)
	}
	return nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
