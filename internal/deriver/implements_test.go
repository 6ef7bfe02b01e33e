package deriver

import (
	"context"
	"strings"
	"testing"
)

func TestDeriveImplements_CommitMessageSourceExtractsRequirementIDs(t *testing.T) {
	backend := newFakeBackend()
	backend.QueryFunc = func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
		switch {
		case strings.Contains(query, "DerivationWatermark"):
			return nil, nil
		case strings.Contains(query, "TOUCHED]->(f:File)") && strings.Contains(query, "collect(DISTINCT f.path)"):
			return []map[string]any{
				{"message": "fixes FR-1-1", "ts": "2026-01-01T00:00:00Z", "paths": []any{"a.go", "b.go"}},
			}, nil
		default:
			return nil, nil
		}
	}
	d := NewDeriver(backend, "run-1", false)

	total, err := d.DeriveImplements(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2 (one IMPLEMENTS edge per touched file)", total)
	}
	if len(backend.MergedEdges) != 2 {
		t.Fatalf("expected 2 merged edges, got %d", len(backend.MergedEdges))
	}
	for _, e := range backend.MergedEdges {
		if e.Label != "IMPLEMENTS" {
			t.Errorf("edge label = %q, want IMPLEMENTS", e.Label)
		}
		if e.From != "Requirement:FR-1-1" {
			t.Errorf("edge from = %q, want Requirement:FR-1-1", e.From)
		}
	}
	if len(backend.BatchedQueries) != 1 {
		t.Errorf("expected the requirement node to be ensured once, got %d batched queries", len(backend.BatchedQueries))
	}
}

func TestDeriveImplements_NoMatchesYieldsZeroWithoutError(t *testing.T) {
	backend := newFakeBackend()
	backend.QueryFunc = func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
		return nil, nil
	}
	d := NewDeriver(backend, "run-1", false)

	total, err := d.DeriveImplements(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
	if len(backend.MergedEdges) != 0 {
		t.Error("expected no merged edges")
	}
}
