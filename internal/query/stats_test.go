package query

import (
	"context"
	"strings"
	"testing"
)

func newTestLayer(backend *fakeBackend) *Layer {
	return &Layer{
		backend:   backend,
		cache:     newResultCache(),
		throttle:  newAdmissionThrottle(1000, 1000),
		telemetry: newTelemetryRing(),
	}
}

func TestStats_SplitsNodeAndEdgeCounts(t *testing.T) {
	backend := &fakeBackend{
		QueryFunc: func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
			return []map[string]any{
				{"kind": "node", "label": "File", "count": int64(10)},
				{"kind": "edge", "label": "TOUCHED", "count": int64(4)},
			}, nil
		},
	}
	l := newTestLayer(backend)

	stats, err := l.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.NodeCounts["File"] != 10 {
		t.Errorf("NodeCounts[File] = %d, want 10", stats.NodeCounts["File"])
	}
	if stats.EdgeCounts["TOUCHED"] != 4 {
		t.Errorf("EdgeCounts[TOUCHED] = %d, want 4", stats.EdgeCounts["TOUCHED"])
	}
}

func TestStats_CachesSecondCall(t *testing.T) {
	calls := 0
	backend := &fakeBackend{
		QueryFunc: func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
			calls++
			return []map[string]any{{"kind": "node", "label": "File", "count": int64(1)}}, nil
		},
	}
	l := newTestLayer(backend)

	if _, err := l.Stats(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := l.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected the backend to be queried once, got %d calls", calls)
	}
	if !second.Performance.CacheHit {
		t.Error("expected the second call to report a cache hit")
	}
}

func TestAnalytics_ComputesTraceabilityCoverageAndPeakDay(t *testing.T) {
	backend := &fakeBackend{
		QueryFunc: func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
			switch {
			case strings.Contains(query, "Requirement"):
				return []map[string]any{{"total": int64(4), "linked": int64(3)}}, nil
			case strings.Contains(query, "activity"), strings.Contains(query, "GitCommit"):
				return []map[string]any{
					{"day": "2026-01-02", "count": int64(5)},
					{"day": "2026-01-01", "count": int64(2)},
				}, nil
			default:
				return []map[string]any{{"kind": "node", "label": "File", "count": int64(1)}}, nil
			}
		},
	}
	l := newTestLayer(backend)

	a, err := l.Analytics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.TraceabilityCoverage != 75.0 {
		t.Errorf("TraceabilityCoverage = %v, want 75.0", a.TraceabilityCoverage)
	}
	if a.PeakActivityDay != "2026-01-02" || a.PeakActivityCount != 5 {
		t.Errorf("peak activity = (%s, %d), want (2026-01-02, 5)", a.PeakActivityDay, a.PeakActivityCount)
	}
}

func TestAnalytics_ZeroRequirementsYieldsZeroCoverage(t *testing.T) {
	backend := &fakeBackend{
		QueryFunc: func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
			if strings.Contains(query, "Requirement") {
				return []map[string]any{{"total": int64(0), "linked": int64(0)}}, nil
			}
			return nil, nil
		},
	}
	l := newTestLayer(backend)

	a, err := l.Analytics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.TraceabilityCoverage != 0 {
		t.Errorf("TraceabilityCoverage = %v, want 0", a.TraceabilityCoverage)
	}
}
