package query

import (
	"context"

	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// fakeBackend is a minimal graphstore.Backend stand-in for the query layer's
// unit tests: QueryFunc decides the rows for any Query call, letting each
// test dispatch on the Cypher text it cares about without a live store.
type fakeBackend struct {
	QueryFunc func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
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
func (f *fakeBackend) MergeEvidence(ctx context.Context, edge graphstore.GraphEdge) error {
	return nil
}
func (f *fakeBackend) ExecuteBatchWithParams(ctx context.Context, queries []graphstore.QueryWithParams) error {
	return nil
}

func (f *fakeBackend) Query(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return f.QueryFunc(ctx, query, params)
}

func (f *fakeBackend) ResetGraph(ctx context.Context) error               { return nil }
func (f *fakeBackend) DeleteOrphanNodes(ctx context.Context) (int, error) { return 0, nil }
func (f *fakeBackend) Close(ctx context.Context) error                    { return nil }
