package query

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// allEdgeLabels lists every relationship type any writer in this module
// creates — the structural edges from Stages 1-6 plus the Relationship
// Deriver's six evidence families (§4.7) — so Stats/Analytics can report a
// count per type without a caller needing to know the schema.
func allEdgeLabels() []string {
	return []string{
		"CONTAINS", "CONTAINS_CHUNK", "CONTAINS_DOC", "DEFINED_IN", "IMPORTS",
		"USES_LIBRARY", "TOUCHED", "REFACTORED_TO", "PART_OF", "INCLUDES", "INVOLVES_FILE",
		"IMPLEMENTS", "EVOLVES_FROM", "DEPENDS_ON",
		"MENTIONS_COMMIT", "MENTIONS_FILE", "MENTIONS_LIBRARY", "MENTIONS_SYMBOL",
		"RELATES_TO", "CO_OCCURS_WITH",
	}
}

// Stats is the /stats contract's return shape: consolidated node and edge
// counts by type.
type Stats struct {
	NodeCounts  map[string]int `json:"node_counts"`
	EdgeCounts  map[string]int `json:"edge_counts"`
	Performance Performance    `json:"performance"`
}

// Stats implements the consolidated-totals endpoint (§4.8: "Consolidated
// stats endpoints MUST execute as one store query, not N"). Every label's
// count is a branch of a single UNION ALL query string, so the driver sees
// one round trip no matter how many node/edge types exist.
func (l *Layer) Stats(ctx context.Context) (Stats, error) {
	if err := l.throttle.wait(ctx); err != nil {
		return Stats{}, err
	}

	const key = "stats"
	if cached, ok := l.cache.get(key); ok {
		s := cached.(Stats)
		s.Performance.CacheHit = true
		l.telemetry.record("stats", 0, true)
		return s, nil
	}

	start := time.Now()
	rows, err := l.backend.Query(ctx, consolidatedCountsQuery(), nil)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}

	stats := Stats{NodeCounts: make(map[string]int), EdgeCounts: make(map[string]int)}
	edgeSet := make(map[string]bool, len(allEdgeLabels()))
	for _, e := range allEdgeLabels() {
		edgeSet[e] = true
	}
	for _, row := range rows {
		kind := asBucketString(row["kind"])
		label := asBucketString(row["label"])
		count := asBucketInt(row["count"])
		if edgeSet[label] {
			stats.EdgeCounts[label] = count
		} else if kind == "node" {
			stats.NodeCounts[label] = count
		}
	}

	stats.Performance = Performance{DurationMS: time.Since(start).Milliseconds()}
	l.cache.set(key, stats)
	l.telemetry.record("stats", time.Since(start), false)
	return stats, nil
}

// consolidatedCountsQuery builds one UNION ALL query: a MATCH (n:Label)
// RETURN 'node', 'Label', count(n) branch for every known node label, and a
// MATCH ()-[r:TYPE]->() branch for every known edge label.
func consolidatedCountsQuery() string {
	branches := make([]string, 0, len(allNodeLabels())+len(allEdgeLabels()))
	for _, label := range allNodeLabels() {
		branches = append(branches, fmt.Sprintf(
			"MATCH (n:%s) RETURN 'node' AS kind, '%s' AS label, count(n) AS count", label, label))
	}
	for _, label := range allEdgeLabels() {
		branches = append(branches, fmt.Sprintf(
			"MATCH ()-[r:%s]->() RETURN 'edge' AS kind, '%s' AS label, count(r) AS count", label, label))
	}
	return strings.Join(branches, "\nUNION ALL\n")
}

// Analytics is the /analytics contract's return shape: derived metrics
// beyond raw counts.
type Analytics struct {
	NodeCounts           map[string]int     `json:"node_counts"`
	EdgeCounts           map[string]int     `json:"edge_counts"`
	TraceabilityCoverage float64            `json:"traceability_coverage_pct"`
	ActivityPerDay       map[string]int     `json:"activity_per_day"`
	PeakActivityDay      string             `json:"peak_activity_day"`
	PeakActivityCount    int                `json:"peak_activity_count"`
	Performance          Performance        `json:"performance"`
}

// Analytics implements the §6 analytics endpoint: node/edge counts by type
// (reusing Stats' single query), traceability coverage (the fraction of
// Requirement nodes that have an incoming PART_OF edge), and a commit
// activity histogram used to find the single busiest day.
func (l *Layer) Analytics(ctx context.Context) (Analytics, error) {
	if err := l.throttle.wait(ctx); err != nil {
		return Analytics{}, err
	}

	const key = "analytics"
	if cached, ok := l.cache.get(key); ok {
		a := cached.(Analytics)
		a.Performance.CacheHit = true
		l.telemetry.record("analytics", 0, true)
		return a, nil
	}

	start := time.Now()

	stats, err := l.statsUncached(ctx)
	if err != nil {
		return Analytics{}, err
	}

	coverageRows, err := l.backend.Query(ctx, `
		MATCH (r:Requirement)
		RETURN count(r) AS total, count((r)<-[:PART_OF]-()) AS linked
	`, nil)
	if err != nil {
		return Analytics{}, fmt.Errorf("query traceability coverage: %w", err)
	}
	coverage := 0.0
	if len(coverageRows) > 0 {
		total := asBucketInt(coverageRows[0]["total"])
		linked := asBucketInt(coverageRows[0]["linked"])
		if total > 0 {
			coverage = float64(linked) / float64(total) * 100
		}
	}

	activityRows, err := l.backend.Query(ctx, `
		MATCH (c:GitCommit)
		WITH substring(c.timestamp, 0, 10) AS day, count(*) AS count
		RETURN day, count
		ORDER BY count DESC
	`, nil)
	if err != nil {
		return Analytics{}, fmt.Errorf("query activity per day: %w", err)
	}
	activity := make(map[string]int, len(activityRows))
	peakDay, peakCount := "", 0
	for i, row := range activityRows {
		day := asBucketString(row["day"])
		count := asBucketInt(row["count"])
		activity[day] = count
		if i == 0 {
			peakDay, peakCount = day, count
		}
	}

	a := Analytics{
		NodeCounts:           stats.NodeCounts,
		EdgeCounts:           stats.EdgeCounts,
		TraceabilityCoverage: coverage,
		ActivityPerDay:       activity,
		PeakActivityDay:      peakDay,
		PeakActivityCount:    peakCount,
		Performance:          Performance{DurationMS: time.Since(start).Milliseconds()},
	}
	l.cache.set(key, a)
	l.telemetry.record("analytics", time.Since(start), false)
	return a, nil
}

// statsUncached runs the same consolidated query Stats does, but skips its
// own cache/telemetry bookkeeping — Analytics folds the result into its own
// cached entry instead of double-counting a cache hit.
func (l *Layer) statsUncached(ctx context.Context) (Stats, error) {
	rows, err := l.backend.Query(ctx, consolidatedCountsQuery(), nil)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	stats := Stats{NodeCounts: make(map[string]int), EdgeCounts: make(map[string]int)}
	edgeSet := make(map[string]bool, len(allEdgeLabels()))
	for _, e := range allEdgeLabels() {
		edgeSet[e] = true
	}
	for _, row := range rows {
		label := asBucketString(row["label"])
		count := asBucketInt(row["count"])
		if edgeSet[label] {
			stats.EdgeCounts[label] = count
		} else {
			stats.NodeCounts[label] = count
		}
	}
	return stats, nil
}
