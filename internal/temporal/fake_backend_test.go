package temporal

import (
	"context"

	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// fakeBackend is a minimal graphstore.Backend stand-in that records every
// batch writeCommit submits, so tests can inspect the exact queries/params
// built for a commit without a live Neo4j instance.
type fakeBackend struct {
	BatchedQueries []graphstore.QueryWithParams
}

func (f *fakeBackend) CreateNode(ctx context.Context, node graphstore.GraphNode) (string, error) {
	return "", nil
}
func (f *fakeBackend) CreateNodes(ctx context.Context, nodes []graphstore.GraphNode) error {
	return nil
}
func (f *fakeBackend) CreateEdge(ctx context.Context, edge graphstore.GraphEdge) error { return nil }
func (f *fakeBackend) CreateEdges(ctx context.Context, edges []graphstore.GraphEdge) error {
	return nil
}
func (f *fakeBackend) MergeEvidence(ctx context.Context, edge graphstore.GraphEdge) error { return nil }

func (f *fakeBackend) ExecuteBatchWithParams(ctx context.Context, queries []graphstore.QueryWithParams) error {
	f.BatchedQueries = append(f.BatchedQueries, queries...)
	return nil
}

func (f *fakeBackend) Query(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return nil, nil
}

func (f *fakeBackend) ResetGraph(ctx context.Context) error               { return nil }
func (f *fakeBackend) DeleteOrphanNodes(ctx context.Context) (int, error) { return 0, nil }
func (f *fakeBackend) Close(ctx context.Context) error                    { return nil }
