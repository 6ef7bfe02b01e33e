// Package graphstore is the ingestion engine's binding to the external
// labelled-property graph store. It owns node/edge shapes, the injection-safe
// Cypher builder, the UNWIND batch writer, schema declarations, and
// watermark persistence — everything the pipeline needs from the store and
// nothing else (the store itself is an external collaborator, never a
// general-purpose database the engine manages).
package graphstore

import "context"

// Backend defines the operations the ingestion engine needs from a graph
// store. Neo4jBackend is the only implementation; the interface exists so
// stage code never depends on the neo4j driver directly.
type Backend interface {
	// CreateNode creates a single node with an idempotent MERGE.
	CreateNode(ctx context.Context, node GraphNode) (string, error)

	// CreateNodes creates many nodes in batch, grouped and UNWOUND by label.
	CreateNodes(ctx context.Context, nodes []GraphNode) error

	// CreateEdge creates a single edge with an idempotent MERGE.
	CreateEdge(ctx context.Context, edge GraphEdge) error

	// CreateEdges creates many edges in batch, grouped and UNWOUND by label.
	CreateEdges(ctx context.Context, edges []GraphEdge) error

	// MergeEvidence applies the complementary-probability composition rule
	// to a derived edge: it appends sources, widens [first_seen_ts,
	// last_seen_ts], and recomputes confidence from the accumulated value.
	MergeEvidence(ctx context.Context, edge GraphEdge) error

	// ExecuteBatchWithParams runs several parameterised statements in a
	// single transaction.
	ExecuteBatchWithParams(ctx context.Context, queries []QueryWithParams) error

	// Query runs a read-only parameterised query and returns rows as maps.
	Query(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)

	// ResetGraph deletes every node and edge in the database; the caller is
	// responsible for re-running BootstrapSchema afterward.
	ResetGraph(ctx context.Context) error

	// DeleteOrphanNodes deletes every node with no incident edges (§6's
	// /cleanup/orphans) and returns the number removed. Unlike ResetGraph
	// this targets only nodes a MERGE-based write left behind with no
	// relationship ever attached to them — a synthesized Requirement whose
	// free-text id never matched a real PART_OF parent, for instance.
	DeleteOrphanNodes(ctx context.Context) (int, error)

	// Close releases the underlying driver.
	Close(ctx context.Context) error
}

// GraphNode represents a node to be written. Label must be one of this
// spec's node kinds (GitCommit, File, Directory, Document, Chunk, Symbol,
// Library, Requirement, Sprint, DerivationWatermark).
type GraphNode struct {
	Label      string
	Properties map[string]any
}

// GraphEdge represents an edge to be written. From/To are node references in
// "Label:key" form (e.g. "File:src/main.go", "GitCommit:abc123...").
// Temporal edge kinds carry a non-nil Timestamp property; structural kinds
// leave it absent, per invariant 2 of the data model.
type GraphEdge struct {
	Label      string
	From       string
	To         string
	Properties map[string]any

	// Evidence-bearing fields, set only when writing through MergeEvidence
	// (derived edges — §4.7).
	Sources     []string
	Confidence  float64
	FirstSeenTS string
	LastSeenTS  string
}

// QueryWithParams pairs a Cypher statement with its bound parameters.
type QueryWithParams struct {
	Query  string
	Params map[string]any
}
