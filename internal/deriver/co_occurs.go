package deriver

import (
	"context"
	"fmt"

	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// DeriveCoOccurs runs the CO_OCCURS_WITH evidence source (§4.7 family 6):
// every commit that touches two files at once increments a per-pair weight
// counter, and confidence is min(1, weight/10). Unlike every other family in
// this package, this is not the complementary-probability rule MergeEvidence
// applies — it is a separate accumulation formula, so it writes directly
// through a MERGE/SET statement instead of going through MergeEvidence.
func (d *Deriver) DeriveCoOccurs(ctx context.Context) (int, error) {
	const key = "co_occurs_with:commit_pairs"
	since, err := d.watermarkSince(ctx, key)
	if err != nil {
		return 0, err
	}

	if d.dryRun {
		rows, err := d.backend.Query(ctx, `
			MATCH (c:GitCommit) WHERE c.timestamp > $since
			MATCH (c)-[:TOUCHED]->(f1:File)
			MATCH (c)-[:TOUCHED]->(f2:File)
			WHERE f1.path < f2.path
			RETURN count(DISTINCT [f1.path, f2.path]) AS pairs
		`, map[string]any{"since": since})
		if err != nil {
			return 0, fmt.Errorf("count co-occurring pairs: %w", err)
		}
		if len(rows) == 0 {
			return 0, nil
		}
		return int(asFloat(rows[0]["pairs"])), nil
	}

	if err := d.backend.ExecuteBatchWithParams(ctx, []graphstore.QueryWithParams{{
		Query: `
			MATCH (c:GitCommit) WHERE c.timestamp > $since
			MATCH (c)-[:TOUCHED]->(f1:File)
			MATCH (c)-[:TOUCHED]->(f2:File)
			WHERE f1.path < f2.path
			MERGE (f1)-[r:CO_OCCURS_WITH]->(f2)
			ON CREATE SET r.weight = 1, r.sources = ['co-change'],
			              r.first_seen_ts = c.timestamp, r.last_seen_ts = c.timestamp
			ON MATCH SET r.weight = r.weight + 1, r.last_seen_ts = c.timestamp
			WITH r
			SET r.confidence = CASE WHEN r.weight >= 10 THEN 1.0 ELSE toFloat(r.weight) / 10 END
		`,
		Params: map[string]any{"since": since},
	}}); err != nil {
		return 0, fmt.Errorf("merge co_occurs_with edges: %w", err)
	}

	rows, err := d.backend.Query(ctx, `
		MATCH (c:GitCommit) WHERE c.timestamp > $since
		RETURN max(c.timestamp) AS maxTS, count(c) AS n
	`, map[string]any{"since": since})
	if err != nil {
		return 0, fmt.Errorf("read max commit timestamp for co_occurs_with: %w", err)
	}
	if len(rows) == 0 || asString(rows[0]["maxTS"]) == "" {
		return 0, nil
	}

	maxTS := asString(rows[0]["maxTS"])
	if err := graphstore.AdvanceWatermark(ctx, d.backend, key, maxTS, d.runID); err != nil {
		return 0, fmt.Errorf("advance watermark %s: %w", key, err)
	}
	return int(asFloat(rows[0]["n"])), nil
}
