package deriver

import (
	"context"
	"fmt"
)

// DeriveDependsOn runs the import-graph-overlap evidence source (§4.7
// family 3): if requirement R1 IMPLEMENTS files F1..Fn and R2 IMPLEMENTS
// files G1..Gm, and at least max(2, 0.3n) of the (F, G) pairs have an
// IMPORTS edge, R1 DEPENDS_ON R2. IMPLEMENTS is itself derived evidence, so
// its last_seen_ts drives this family's incrementality rather than a raw
// event timestamp.
func (d *Deriver) DeriveDependsOn(ctx context.Context) (int, error) {
	const key = "depends_on:import_overlap"
	since, err := d.watermarkSince(ctx, key)
	if err != nil {
		return 0, err
	}

	implRows, err := d.backend.Query(ctx, `
		MATCH (r:Requirement)-[i:IMPLEMENTS]->(f:File)
		WHERE i.last_seen_ts > $since
		RETURN r.id AS reqID, collect(DISTINCT f.path) AS files, max(i.last_seen_ts) AS ts
	`, map[string]any{"since": since})
	if err != nil {
		return 0, fmt.Errorf("query implements for depends_on: %w", err)
	}
	if len(implRows) == 0 {
		return 0, nil
	}

	type reqFiles struct {
		files []string
		ts    string
	}
	byReq := make(map[string]reqFiles, len(implRows))
	for _, row := range implRows {
		reqID := asString(row["reqID"])
		var paths []string
		if raw, ok := row["files"].([]any); ok {
			for _, p := range raw {
				paths = append(paths, asString(p))
			}
		}
		byReq[reqID] = reqFiles{files: paths, ts: asString(row["ts"])}
	}

	importRows, err := d.backend.Query(ctx, `
		MATCH (f1:File)-[:IMPORTS]->(f2:File)
		RETURN f1.path AS from, f2.path AS to
	`, nil)
	if err != nil {
		return 0, fmt.Errorf("query imports for depends_on: %w", err)
	}
	imports := make(map[string]map[string]bool, len(importRows))
	for _, row := range importRows {
		from, to := asString(row["from"]), asString(row["to"])
		if imports[from] == nil {
			imports[from] = make(map[string]bool)
		}
		imports[from][to] = true
	}

	var results []familyResult
	for r1, f1 := range byReq {
		for r2, f2 := range byReq {
			if r1 == r2 {
				continue
			}
			count := 0
			for _, f := range f1.files {
				for _, g := range f2.files {
					if imports[f][g] {
						count++
					}
				}
			}
			threshold := 0.3 * float64(len(f1.files))
			if threshold < 2 {
				threshold = 2
			}
			if float64(count) < threshold {
				continue
			}
			ts := f1.ts
			if f2.ts > ts {
				ts = f2.ts
			}
			results = append(results, familyResult{
				FromRef: "Requirement:" + r1, ToRef: "Requirement:" + r2,
				Source: "import-overlap", Confidence: ConfImportOverlap, Timestamp: ts,
			})
		}
	}

	return d.runFamily(ctx, key, "DEPENDS_ON", results)
}
