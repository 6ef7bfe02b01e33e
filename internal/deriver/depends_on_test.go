package deriver

import (
	"context"
	"strings"
	"testing"
)

func TestDeriveDependsOn_EmitsEdgeWhenImportOverlapMeetsThreshold(t *testing.T) {
	backend := newFakeBackend()
	backend.QueryFunc = func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
		switch {
		case strings.Contains(query, "DerivationWatermark"):
			return nil, nil
		case strings.Contains(query, "IMPLEMENTS]->(f:File)"):
			return []map[string]any{
				{"reqID": "FR-1-1", "files": []any{"a.go", "b.go", "c.go", "d.go"}, "ts": "2026-01-01T00:00:00Z"},
				{"reqID": "FR-2-2", "files": []any{"e.go", "f.go"}, "ts": "2026-01-02T00:00:00Z"},
			}, nil
		case strings.Contains(query, "IMPORTS]->(f2:File)"):
			return []map[string]any{
				{"from": "a.go", "to": "e.go"},
				{"from": "b.go", "to": "f.go"},
			}, nil
		default:
			return nil, nil
		}
	}
	d := NewDeriver(backend, "run-1", false)

	total, err := d.DeriveDependsOn(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// FR-1-1 (n=4, threshold=max(2,1.2)=2) has 2 import hits into FR-2-2's
	// files, so one DEPENDS_ON edge from FR-1-1 to FR-2-2 is expected; the
	// reverse direction has no imports at all.
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
	edge := backend.MergedEdges[0]
	if edge.From != "Requirement:FR-1-1" || edge.To != "Requirement:FR-2-2" {
		t.Errorf("edge = %s -> %s, want FR-1-1 -> FR-2-2", edge.From, edge.To)
	}
	if edge.Label != "DEPENDS_ON" {
		t.Errorf("label = %q, want DEPENDS_ON", edge.Label)
	}
}

func TestDeriveDependsOn_BelowThresholdEmitsNoEdge(t *testing.T) {
	backend := newFakeBackend()
	backend.QueryFunc = func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
		switch {
		case strings.Contains(query, "DerivationWatermark"):
			return nil, nil
		case strings.Contains(query, "IMPLEMENTS]->(f:File)"):
			return []map[string]any{
				{"reqID": "FR-1-1", "files": []any{"a.go", "b.go", "c.go", "d.go"}, "ts": "2026-01-01T00:00:00Z"},
				{"reqID": "FR-2-2", "files": []any{"e.go", "f.go"}, "ts": "2026-01-02T00:00:00Z"},
			}, nil
		case strings.Contains(query, "IMPORTS]->(f2:File)"):
			return []map[string]any{
				{"from": "a.go", "to": "e.go"},
			}, nil
		default:
			return nil, nil
		}
	}
	d := NewDeriver(backend, "run-1", false)

	total, err := d.DeriveDependsOn(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0 (only 1 import hit, below the threshold of 2)", total)
	}
}

func TestDeriveDependsOn_NoImplementsRowsIsANoop(t *testing.T) {
	backend := newFakeBackend()
	backend.QueryFunc = func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
		return nil, nil
	}
	d := NewDeriver(backend, "run-1", false)

	total, err := d.DeriveDependsOn(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}
