package query

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// Layer binds the graph store to the four read contracts §4.8 names plus
// telemetry, each wrapped in the cache/throttle/profiler machinery.
type Layer struct {
	backend   graphstore.Backend
	cache     *resultCache
	throttle  *admissionThrottle
	telemetry *telemetryRing
	profiler  *graphstore.PerformanceProfiler
}

// NewLayer binds a Layer to a running graph-store backend. requestsPerSecond
// and burst tune the admission throttle; 20/10 is a reasonable default for a
// single shared driver serving a handful of concurrent clients.
func NewLayer(backend graphstore.Backend, requestsPerSecond float64, burst int) *Layer {
	return &Layer{
		backend:   backend,
		cache:     newResultCache(),
		throttle:  newAdmissionThrottle(requestsPerSecond, burst),
		telemetry: newTelemetryRing(),
		profiler:  graphstore.NewPerformanceProfiler(),
	}
}

// Subgraph returns nodes of the requested types whose temporal attachment
// intersects [from, to], plus all edges among the returned nodes (§4.8).
// Results are cursor-paginated; the cursor is an opaque base64 offset.
func (l *Layer) Subgraph(ctx context.Context, from, to string, nodeTypes []string, limit int, cursor string) (Subgraph, error) {
	if err := l.throttle.wait(ctx); err != nil {
		return Subgraph{}, err
	}
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	offset := decodeCursor(cursor)
	labels := filterKnownLabels(nodeTypes)
	if len(labels) == 0 {
		labels = allNodeLabels()
	}

	key := fmt.Sprintf("subgraph:%v:%s:%s:%d:%d", labels, from, to, limit, offset)
	if cached, ok := l.cache.get(key); ok {
		sg := cached.(Subgraph)
		sg.Performance.CacheHit = true
		l.telemetry.record("subgraph", 0, true)
		return sg, nil
	}

	start := time.Now()
	var nodes []Node
	var refs []nodeRef
	for _, label := range labels {
		q := temporalNodeQuery(label)
		result, err := l.profiler.Profile(ctx, "subgraph_query", q, func() (any, error) {
			return l.backend.Query(ctx, q, map[string]any{
				"from": from, "to": to, "skip": offset, "limit": limit,
			})
		})
		if err != nil {
			return Subgraph{}, fmt.Errorf("query %s nodes for subgraph: %w", label, err)
		}
		rows, _ := result.([]map[string]any)
		for _, row := range rows {
			props, _ := row["props"].(map[string]any)
			nodes = append(nodes, Node{Label: label, Properties: props})
			if k, ok := props[graphstore.UniqueKey(label)]; ok {
				refs = append(refs, nodeRef{Label: label, KeyProp: graphstore.UniqueKey(label), Key: fmt.Sprintf("%v", k)})
			}
		}
	}

	edges, err := l.edgesAmong(ctx, refs)
	if err != nil {
		return Subgraph{}, err
	}

	sg := Subgraph{
		Nodes: nodes,
		Edges: edges,
		Pagination: Pagination{
			HasMore:    len(nodes) >= limit,
			NextCursor: encodeCursor(offset + limit),
		},
		Performance: Performance{DurationMS: time.Since(start).Milliseconds()},
	}
	l.cache.set(key, sg)
	l.telemetry.record("subgraph", time.Since(start), false)
	return sg, nil
}

// SprintSubgraph is a convenience wrapper: every node INCLUDEd or
// INVOLVEd by the named sprint, plus the edges among them (§4.8).
func (l *Layer) SprintSubgraph(ctx context.Context, sprintNumber int) (Subgraph, error) {
	if err := l.throttle.wait(ctx); err != nil {
		return Subgraph{}, err
	}

	key := fmt.Sprintf("sprint_subgraph:%d", sprintNumber)
	if cached, ok := l.cache.get(key); ok {
		sg := cached.(Subgraph)
		sg.Performance.CacheHit = true
		l.telemetry.record("sprint_subgraph", 0, true)
		return sg, nil
	}

	start := time.Now()
	rows, err := l.backend.Query(ctx, `
		MATCH (s:Sprint {number: $number})
		OPTIONAL MATCH (s)-[:INCLUDES]->(c:GitCommit)
		OPTIONAL MATCH (s)-[:INVOLVES_FILE]->(f:File)
		OPTIONAL MATCH (s)-[:CONTAINS_DOC]->(d:Document)
		OPTIONAL MATCH (r:Requirement)-[:PART_OF]->(s)
		RETURN properties(s) AS sprint, collect(DISTINCT properties(c)) AS commits,
		       collect(DISTINCT properties(f)) AS files, collect(DISTINCT properties(d)) AS docs,
		       collect(DISTINCT properties(r)) AS reqs
	`, map[string]any{"number": sprintNumber})
	if err != nil {
		return Subgraph{}, fmt.Errorf("query sprint subgraph: %w", err)
	}
	if len(rows) == 0 {
		return Subgraph{}, nil
	}
	row := rows[0]

	var nodes []Node
	var refs []nodeRef
	if sprint, ok := row["sprint"].(map[string]any); ok && sprint != nil {
		nodes = append(nodes, Node{Label: "Sprint", Properties: sprint})
		refs = append(refs, nodeRef{Label: "Sprint", KeyProp: "number", Key: fmt.Sprintf("%v", sprint["number"])})
	}
	addAll := func(label, keyProp, field string) {
		raw, _ := row[field].([]any)
		for _, item := range raw {
			props, ok := item.(map[string]any)
			if !ok || props == nil || props[keyProp] == nil {
				continue
			}
			nodes = append(nodes, Node{Label: label, Properties: props})
			refs = append(refs, nodeRef{Label: label, KeyProp: keyProp, Key: fmt.Sprintf("%v", props[keyProp])})
		}
	}
	addAll("GitCommit", "hash", "commits")
	addAll("File", "path", "files")
	addAll("Document", "path", "docs")
	addAll("Requirement", "id", "reqs")

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
	l.telemetry.record("sprint_subgraph", time.Since(start), false)
	return sg, nil
}

// Telemetry implements the telemetry() contract (§4.8): average query time,
// cache hit rate, memory usage, and the most recent query's metrics.
func (l *Layer) Telemetry() TelemetrySnapshot {
	return l.telemetry.snapshot()
}

// nodeRef identifies one node by label and natural-key value, the unit
// edgesAmong uses to find edges between an already-fetched node set.
type nodeRef struct {
	Label   string
	KeyProp string
	Key     string
}

// edgesAmong finds every edge whose endpoints are both in refs. Endpoint
// labels vary (the data model has no single from/to label pair per edge
// kind), so this matches generically on label membership plus the
// natural-key property named by each ref rather than assuming a fixed
// shape — the same posture createEdgesBatchByLabel takes on the write side.
func (l *Layer) edgesAmong(ctx context.Context, refs []nodeRef) ([]Edge, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	pairs := make([]map[string]any, len(refs))
	for i, r := range refs {
		pairs[i] = map[string]any{"label": r.Label, "keyProp": r.KeyProp, "key": r.Key}
	}

	rows, err := l.backend.Query(ctx, `
		UNWIND $pairs AS pair
		MATCH (a) WHERE pair.label IN labels(a) AND toString(a[pair.keyProp]) = pair.key
		MATCH (a)-[r]->(b)
		WITH r, a, b, pair
		UNWIND $pairs AS pair2
		WITH r, a, b, pair2 WHERE pair2.label IN labels(b) AND toString(b[pair2.keyProp]) = pair2.key
		RETURN type(r) AS relType, properties(r) AS props,
		       pair2.label AS toLabel, pair2.key AS toKey,
		       labels(a) AS fromLabels, coalesce(a.path, a.id, a.hash, a.name, a.number, a.uid) AS fromKey
	`, map[string]any{"pairs": pairs})
	if err != nil {
		return nil, fmt.Errorf("query edges among subgraph nodes: %w", err)
	}

	edges := make([]Edge, 0, len(rows))
	for _, row := range rows {
		fromLabels, _ := row["fromLabels"].([]any)
		fromLabel := ""
		if len(fromLabels) > 0 {
			fromLabel = fmt.Sprintf("%v", fromLabels[0])
		}
		props, _ := row["props"].(map[string]any)
		edges = append(edges, Edge{
			Label:      fmt.Sprintf("%v", row["relType"]),
			From:       fmt.Sprintf("%s:%v", fromLabel, row["fromKey"]),
			To:         fmt.Sprintf("%v:%v", row["toLabel"], row["toKey"]),
			Properties: props,
		})
	}
	return edges, nil
}

// temporalNodeQuery returns the Cypher for fetching nodes of one known
// label whose temporal attachment intersects [$from, $to]: a commit's own
// timestamp, a file's last_modified_ts, a chunk's own
// last_modified_timestamp (§3, §4.8: "last_modified_timestamp for chunks",
// backed by the chunk_last_modified index on that exact property), and —
// for structural kinds with no natural per-node timestamp (Directory,
// Symbol, Library, Requirement, Sprint, Document) — no time filter at all.
func temporalNodeQuery(label string) string {
	switch label {
	case "GitCommit":
		return `
			MATCH (n:GitCommit)
			WHERE ($from = '' OR n.timestamp >= $from) AND ($to = '' OR n.timestamp <= $to)
			RETURN properties(n) AS props ORDER BY n.timestamp SKIP $skip LIMIT $limit
		`
	case "File":
		return `
			MATCH (n:File)
			WHERE ($from = '' OR coalesce(n.last_modified_ts, '') >= $from)
			  AND ($to = '' OR coalesce(n.last_modified_ts, '') <= $to)
			RETURN properties(n) AS props ORDER BY n.path SKIP $skip LIMIT $limit
		`
	case "Chunk":
		return `
			MATCH (n:Chunk)
			WHERE ($from = '' OR coalesce(n.last_modified_timestamp, '') >= $from)
			  AND ($to = '' OR coalesce(n.last_modified_timestamp, '') <= $to)
			RETURN properties(n) AS props ORDER BY n.id SKIP $skip LIMIT $limit
		`
	default:
		return fmt.Sprintf(`
			MATCH (n:%s)
			RETURN properties(n) AS props ORDER BY n.uid SKIP $skip LIMIT $limit
		`, label)
	}
}

func encodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

func decodeCursor(cursor string) int {
	if cursor == "" {
		return 0
	}
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
