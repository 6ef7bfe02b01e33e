package deriver

import (
	"context"

	"github.com/rohankatakam/devgraph/internal/graphstore"
)

// fakeBackend is a minimal graphstore.Backend stand-in for the deriver's
// unit tests. QueryFunc decides rows for any Query call; MergeEvidence and
// ExecuteBatchWithParams calls are recorded for assertions; watermark reads
// and writes are backed by an in-memory map keyed by the watermark's own
// "key" property, mirroring how graphstore.GetWatermark/AdvanceWatermark
// actually read and write a DerivationWatermark node.
type fakeBackend struct {
	QueryFunc      func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	MergedEdges    []graphstore.GraphEdge
	BatchedQueries []graphstore.QueryWithParams
	watermarks     map[string]map[string]any
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{watermarks: make(map[string]map[string]any)}
}

func (f *fakeBackend) CreateNode(ctx context.Context, node graphstore.GraphNode) (string, error) {
	if node.Label == "DerivationWatermark" {
		key := node.Properties["key"].(string)
		f.watermarks[key] = node.Properties
	}
	return "", nil
}

func (f *fakeBackend) CreateNodes(ctx context.Context, nodes []graphstore.GraphNode) error { return nil }
func (f *fakeBackend) CreateEdge(ctx context.Context, edge graphstore.GraphEdge) error     { return nil }
func (f *fakeBackend) CreateEdges(ctx context.Context, edges []graphstore.GraphEdge) error { return nil }

func (f *fakeBackend) MergeEvidence(ctx context.Context, edge graphstore.GraphEdge) error {
	f.MergedEdges = append(f.MergedEdges, edge)
	return nil
}

func (f *fakeBackend) ExecuteBatchWithParams(ctx context.Context, queries []graphstore.QueryWithParams) error {
	f.BatchedQueries = append(f.BatchedQueries, queries...)
	return nil
}

func (f *fakeBackend) Query(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	if f.QueryFunc != nil {
		return f.QueryFunc(ctx, query, params)
	}

	// Fall back to serving watermark reads so family tests that don't care
	// about watermark state don't need to stub this out explicitly.
	key, _ := params["key"].(string)
	props, ok := f.watermarks[key]
	if !ok {
		return nil, nil
	}
	return []map[string]any{{"last_ts": props["last_ts"], "last_run_id": props["last_run_id"]}}, nil
}

func (f *fakeBackend) ResetGraph(ctx context.Context) error               { return nil }
func (f *fakeBackend) DeleteOrphanNodes(ctx context.Context) (int, error) { return 0, nil }
func (f *fakeBackend) Close(ctx context.Context) error                    { return nil }
