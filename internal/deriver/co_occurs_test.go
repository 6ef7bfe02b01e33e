package deriver

import (
	"context"
	"strings"
	"testing"
)

func TestDeriveCoOccurs_DryRunCountsPairsWithoutWriting(t *testing.T) {
	backend := newFakeBackend()
	backend.QueryFunc = func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
		switch {
		case strings.Contains(query, "DerivationWatermark"):
			return nil, nil
		case strings.Contains(query, "count(DISTINCT"):
			return []map[string]any{{"pairs": int64(3)}}, nil
		default:
			return nil, nil
		}
	}
	d := NewDeriver(backend, "run-1", true)

	n, err := d.DeriveCoOccurs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}
	if len(backend.BatchedQueries) != 0 {
		t.Error("dry_run must not execute the MERGE batch")
	}
}

func TestDeriveCoOccurs_WritesAndAdvancesWatermark(t *testing.T) {
	backend := newFakeBackend()
	backend.QueryFunc = func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
		switch {
		case strings.Contains(query, "DerivationWatermark"):
			return nil, nil
		case strings.Contains(query, "RETURN max(c.timestamp)"):
			return []map[string]any{{"maxTS": "2026-01-03T00:00:00Z", "n": int64(5)}}, nil
		default:
			return nil, nil
		}
	}
	d := NewDeriver(backend, "run-1", false)

	n, err := d.DeriveCoOccurs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("n = %d, want 5", n)
	}
	if len(backend.BatchedQueries) != 1 {
		t.Errorf("expected the MERGE batch to run once, got %d", len(backend.BatchedQueries))
	}
	since, err := d.watermarkSince(context.Background(), "co_occurs_with:commit_pairs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if since != "2026-01-03T00:00:00Z" {
		t.Errorf("watermark = %q, want 2026-01-03T00:00:00Z", since)
	}
}

func TestDeriveCoOccurs_NoCommitsLeavesWatermarkUntouched(t *testing.T) {
	backend := newFakeBackend()
	backend.QueryFunc = func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
		if strings.Contains(query, "RETURN max(c.timestamp)") {
			return []map[string]any{{"maxTS": "", "n": int64(0)}}, nil
		}
		return nil, nil
	}
	d := NewDeriver(backend, "run-1", false)

	n, err := d.DeriveCoOccurs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("n = %d, want 0", n)
	}
	if len(backend.watermarks) != 0 {
		t.Error("expected no watermark advance when no commits were found")
	}
}
