package query

import (
	"context"
	"fmt"
	"time"

	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// fulltextIndexesFor maps a node_type filter to the schema's fulltext index
// name (schema.go declares exactly these two). An empty or unrecognised
// node_type searches both.
func fulltextIndexesFor(nodeType string) []string {
	switch nodeType {
	case "Chunk":
		return []string{"chunk_fulltext"}
	case "GitCommit":
		return []string{"commit_fulltext"}
	default:
		return []string{"chunk_fulltext", "commit_fulltext"}
	}
}

// Search implements the search(q, node_type?, relationship_type?, limit)
// contract (§4.8), backed by the two fulltext indexes schema.go declares
// rather than APOC, matching this module's deliberate no-APOC posture.
// relationship_type, when set, restricts results to nodes that participate
// in at least one edge of that type — expressed with an EXISTS subquery so
// no APOC procedure is needed for the dynamic relationship-type match.
func (l *Layer) Search(ctx context.Context, q, nodeType, relationshipType string, limit int) (Subgraph, error) {
	if err := l.throttle.wait(ctx); err != nil {
		return Subgraph{}, err
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	key := fmt.Sprintf("search:%s:%s:%s:%d", q, nodeType, relationshipType, limit)
	if cached, ok := l.cache.get(key); ok {
		sg := cached.(Subgraph)
		sg.Performance.CacheHit = true
		l.telemetry.record("search", 0, true)
		return sg, nil
	}

	start := time.Now()
	var nodes []Node
	var refs []nodeRef
	for _, index := range fulltextIndexesFor(nodeType) {
		const ftQuery = `
			CALL db.index.fulltext.queryNodes($index, $q) YIELD node, score
			WHERE $relType = '' OR EXISTS { (node)-[r]-() WHERE type(r) = $relType }
			RETURN labels(node) AS labels, properties(node) AS props
			ORDER BY score DESC
			LIMIT $limit
		`
		result, err := l.profiler.Profile(ctx, "search_query", ftQuery, func() (any, error) {
			return l.backend.Query(ctx, ftQuery, map[string]any{"index": index, "q": q, "relType": relationshipType, "limit": limit})
		})
		if err != nil {
			return Subgraph{}, fmt.Errorf("fulltext query %s: %w", index, err)
		}
		rows, _ := result.([]map[string]any)
		for _, row := range rows {
			labels, _ := row["labels"].([]any)
			if len(labels) == 0 {
				continue
			}
			label := fmt.Sprintf("%v", labels[0])
			props, _ := row["props"].(map[string]any)
			nodes = append(nodes, Node{Label: label, Properties: props})
			keyProp := graphstore.UniqueKey(label)
			if k, ok := props[keyProp]; ok {
				refs = append(refs, nodeRef{Label: label, KeyProp: keyProp, Key: fmt.Sprintf("%v", k)})
			}
		}
	}

	edges, err := l.edgesAmong(ctx, refs)
	if err != nil {
		return Subgraph{}, err
	}

	sg := Subgraph{
		Nodes:       nodes,
		Edges:       edges,
		Performance: Performance{DurationMS: time.Since(start).Milliseconds()},
	}
	l.cache.set(key, sg)
	l.telemetry.record("search", time.Since(start), false)
	return sg, nil
}
