// Package query implements the Windowed Query Layer (§4.8): subgraph,
// commits_buckets, search, sprint_subgraph, and telemetry, each behind a
// 30-second in-process result cache and an admission-control throttle so a
// slow client can't starve the shared graph-store driver. Grounded on the
// teacher's internal/graph/{lazy_query.go, performance_profiler.go,
// pool_monitor.go} and internal/metrics/registry.go.
package query

// Node is one subgraph-result node, shaped for direct JSON marshalling
// across the HTTP and MCP surfaces.
type Node struct {
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties"`
}

// Edge is one subgraph-result edge.
type Edge struct {
	Label      string         `json:"label"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Pagination carries the cursor-pagination state for subgraph (§4.8).
type Pagination struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// Performance reports the latency and cache status of the call that
// produced it, per §4.8's p95 budgets.
type Performance struct {
	DurationMS int64 `json:"duration_ms"`
	CacheHit   bool  `json:"cache_hit"`
}

// Subgraph is the subgraph() and sprint_subgraph() contract's return shape.
type Subgraph struct {
	Nodes       []Node      `json:"nodes"`
	Edges       []Edge      `json:"edges"`
	Pagination  Pagination  `json:"pagination"`
	Performance Performance `json:"performance"`
}

// Bucket is one commit-density histogram bucket.
type Bucket struct {
	TS    string `json:"ts"`
	Count int    `json:"count"`
}

// Buckets is the commits_buckets() contract's return shape.
type Buckets struct {
	Buckets     []Bucket    `json:"buckets"`
	Performance Performance `json:"performance"`
}

// TelemetrySnapshot is the telemetry() contract's return shape.
type TelemetrySnapshot struct {
	AvgQueryTimeMS   float64        `json:"avg_query_time_ms"`
	CacheHitRate     float64        `json:"cache_hit_rate"`
	MemoryUsageMB    float64        `json:"memory_usage_mb"`
	LastQueryMetrics map[string]any `json:"last_query_metrics"`
}

// knownNodeLabels whitelists the node kinds a caller may request by name,
// since node_types flows in from an external HTTP/MCP caller and is
// otherwise interpolated directly into a Cypher label position.
var knownNodeLabels = map[string]bool{
	"GitCommit": true, "File": true, "Directory": true, "Document": true,
	"Chunk": true, "Symbol": true, "Library": true, "Requirement": true,
	"Sprint": true,
}

func filterKnownLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if knownNodeLabels[l] {
			out = append(out, l)
		}
	}
	return out
}

func allNodeLabels() []string {
	return []string{"GitCommit", "File", "Directory", "Document", "Chunk", "Symbol", "Library", "Requirement", "Sprint"}
}
