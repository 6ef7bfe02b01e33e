package graphstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// BatchWriter creates nodes and edges in bulk via UNWIND rather than one
// MERGE per round trip:
//
//	instead of: MERGE (f:File {path:"a.go"}) MERGE (f:File {path:"b.go"}) ...
//	we run:     UNWIND $nodes AS node MERGE (f:File {path: node.path}) SET f += node
//
// This is the batched write primitive §4.3 requires for every stage.
type BatchWriter struct {
	driver   neo4j.DriverWithContext
	database string
	config   BatchConfig
}

// NewBatchWriter constructs a writer bound to a driver, database, and batch
// sizing policy.
func NewBatchWriter(driver neo4j.DriverWithContext, database string, config BatchConfig) *BatchWriter {
	return &BatchWriter{driver: driver, database: database, config: config}
}

// CreateNodesForLabel dispatches a homogeneous slice of nodes to the
// UNWIND query for their label, chunked per the configured batch size.
func (b *BatchWriter) CreateNodesForLabel(ctx context.Context, label string, nodes []GraphNode) error {
	if len(nodes) == 0 {
		return nil
	}

	uniqueKey := UniqueKey(label)
	batchSize := b.config.SizeForLabel(label)

	nodeParams := make([]map[string]any, len(nodes))
	for i, node := range nodes {
		nodeParams[i] = node.Properties
	}

	query := fmt.Sprintf(`
		UNWIND $nodes AS node
		MERGE (n:%s {%s: node.%s})
		SET n += node
		RETURN count(n) as created
	`, label, uniqueKey, uniqueKey)

	for i := 0; i < len(nodeParams); i += batchSize {
		end := i + batchSize
		if end > len(nodeParams) {
			end = len(nodeParams)
		}
		batch := nodeParams[i:end]

		_, err := neo4j.ExecuteQuery(ctx, b.driver, query,
			map[string]any{"nodes": batch},
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(b.database))
		if err != nil {
			return fmt.Errorf("batch %s creation failed (rows %d-%d): %w", label, i, end, err)
		}
	}

	return nil
}

// MergeManifestLibraries merges Library nodes declared by dependency
// manifests, accumulating each declaring manifest's path into
// Library.manifest_sources instead of overwriting it on every write, so a
// library named by more than one manifest (or re-ingested on a later run)
// keeps every manifest that ever declared it (§4.6 step 3: "append the
// manifest filename to Library.manifest_sources"). Each entry in libs is a
// map with "name", "version", and "manifest_source" keys.
func (b *BatchWriter) MergeManifestLibraries(ctx context.Context, libs []map[string]any) error {
	if len(libs) == 0 {
		return nil
	}
	batchSize := b.config.SizeForLabel("Library")

	query := `
		UNWIND $libs AS lib
		MERGE (n:Library {name: lib.name})
		SET n.uid = lib.name,
		    n.version = lib.version,
		    n.manifest_sources = CASE
		      WHEN n.manifest_sources IS NULL THEN [lib.manifest_source]
		      WHEN lib.manifest_source IN n.manifest_sources THEN n.manifest_sources
		      ELSE n.manifest_sources + lib.manifest_source
		    END
		RETURN count(n) as merged
	`

	for i := 0; i < len(libs); i += batchSize {
		end := i + batchSize
		if end > len(libs) {
			end = len(libs)
		}
		batch := libs[i:end]

		_, err := neo4j.ExecuteQuery(ctx, b.driver, query,
			map[string]any{"libs": batch},
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(b.database))
		if err != nil {
			return fmt.Errorf("batch manifest library merge failed (rows %d-%d): %w", i, end, err)
		}
	}
	return nil
}

// CreateEdgesBatch groups edges by label and writes each group in
// configured-size chunks.
func (b *BatchWriter) CreateEdgesBatch(ctx context.Context, edges []GraphEdge) error {
	if len(edges) == 0 {
		return nil
	}

	byLabel := make(map[string][]GraphEdge)
	for _, edge := range edges {
		byLabel[edge.Label] = append(byLabel[edge.Label], edge)
	}

	for label, group := range byLabel {
		if err := b.createEdgesBatchByLabel(ctx, label, group); err != nil {
			return err
		}
	}
	return nil
}

// createEdgesBatchByLabel writes one edge label's worth of edges. Endpoint
// labels vary row to row (e.g. MENTIONS can point File->Symbol or
// Document->Requirement), so the match clause filters by both an explicit
// label list and the endpoint's natural key, rather than assuming a single
// from/to label pair for the whole batch.
func (b *BatchWriter) createEdgesBatchByLabel(ctx context.Context, edgeLabel string, edges []GraphEdge) error {
	batchSize := b.config.EdgeBatchSize

	for i := 0; i < len(edges); i += batchSize {
		end := i + batchSize
		if end > len(edges) {
			end = len(edges)
		}
		batch := edges[i:end]

		edgeParams := make([]map[string]any, len(batch))
		for j, edge := range batch {
			fromLabel, fromKey := parseNodeRef(edge.From)
			toLabel, toKey := parseNodeRef(edge.To)

			edgeParams[j] = map[string]any{
				"from_label": fromLabel,
				"from_key":   UniqueKey(fromLabel),
				"from_value": fromKey,
				"to_label":   toLabel,
				"to_key":     UniqueKey(toLabel),
				"to_value":   toKey,
				"props":      edge.Properties,
			}
		}

		query := fmt.Sprintf(`
			UNWIND $edges AS edge
			MATCH (from) WHERE edge.from_label IN labels(from) AND from[edge.from_key] = edge.from_value
			MATCH (to) WHERE edge.to_label IN labels(to) AND to[edge.to_key] = edge.to_value
			MERGE (from)-[r:%s]->(to)
			SET r += edge.props
			RETURN count(r) as created
		`, sanitizeLabel(edgeLabel))

		result, err := neo4j.ExecuteQuery(ctx, b.driver, query,
			map[string]any{"edges": edgeParams},
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(b.database))
		if err != nil {
			return fmt.Errorf("batch edge creation failed for %s (rows %d-%d): %w", edgeLabel, i, end, err)
		}

		if len(result.Records) > 0 {
			if created, ok := result.Records[0].Get("created"); ok {
				if createdCount, ok := created.(int64); ok && createdCount < int64(len(batch)) {
					slog.Warn("some edges skipped: one or both endpoints not found",
						"edge_label", edgeLabel,
						"created", createdCount,
						"requested", len(batch))
				}
			}
		}
	}

	return nil
}

// sanitizeLabel strips anything but alphanumerics and underscores before a
// label is interpolated into a query string (CypherBuilder validates
// identifiers the same way for the non-batch path; this is the batch path's
// equivalent guard since edge labels here can't be bound as parameters).
func sanitizeLabel(label string) string {
	out := make([]rune, 0, len(label))
	for _, r := range label {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			out = append(out, r)
		}
	}
	return string(out)
}
