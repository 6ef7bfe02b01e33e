package httpapi

import (
	"context"

	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// fakeBackend is a minimal graphstore.Backend stand-in for handler tests:
// QueryFunc decides the rows for any Query call, letting a test dispatch on
// the Cypher text it cares about without a live store.
type fakeBackend struct {
	QueryFunc       func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	OrphansDeleted  int
	OrphansErr      error
	ResetGraphErr   error
	ResetGraphCalls int
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
	if f.QueryFunc != nil {
		return f.QueryFunc(ctx, query, params)
	}
	return nil, nil
}

func (f *fakeBackend) ResetGraph(ctx context.Context) error {
	f.ResetGraphCalls++
	return f.ResetGraphErr
}
func (f *fakeBackend) DeleteOrphanNodes(ctx context.Context) (int, error) {
	return f.OrphansDeleted, f.OrphansErr
}
func (f *fakeBackend) Close(ctx context.Context) error { return nil }
