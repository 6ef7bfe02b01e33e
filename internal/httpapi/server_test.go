package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rohankatakam/devgraph/internal/apperrors"
	"github.com/rohankatakam/devgraph/internal/config"
	"github.com/rohankatakam/devgraph/internal/jobstore"
	"github.com/rohankatakam/devgraph/internal/orchestrator"
	"github.com/rohankatakam/devgraph/internal/query"
)

// newTestServer wires a Server around a fake backend, a real query.Layer
// (rate-limit wide open so tests never block on the throttle), and a real
// job registry backed by jobstore.NoopStore.
func newTestServer(backend *fakeBackend) *Server {
	cfg := config.Default()
	cfg.RepoPath = "/nonexistent/repo"
	layer := query.NewLayer(backend, 1000, 1000)
	registry := orchestrator.NewRegistry(jobstore.NoopStore{})
	return NewServer(cfg, nil, registry, layer, backend)
}

func doRequest(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, r)
	return w
}

func TestHandleStats_ReturnsEmptyCountsForEmptyStore(t *testing.T) {
	s := newTestServer(&fakeBackend{})
	w := doRequest(t, s, http.MethodGet, "/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var stats query.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(stats.NodeCounts) != 0 || len(stats.EdgeCounts) != 0 {
		t.Errorf("expected empty counts, got nodes=%v edges=%v", stats.NodeCounts, stats.EdgeCounts)
	}
}

func TestHandleStats_PropagatesBackendError(t *testing.T) {
	s := newTestServer(&fakeBackend{
		QueryFunc: func(ctx context.Context, q string, params map[string]any) ([]map[string]any, error) {
			return nil, apperrors.StoreTransientError(context.DeadlineExceeded, "query stats")
		},
	})
	w := doRequest(t, s, http.MethodGet, "/stats", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Kind != "store_transient" {
		t.Errorf("kind = %q, want store_transient", body.Kind)
	}
}

func TestHandleAnalytics_ReturnsZeroCoverageForEmptyStore(t *testing.T) {
	s := newTestServer(&fakeBackend{})
	w := doRequest(t, s, http.MethodGet, "/analytics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var analytics query.Analytics
	if err := json.Unmarshal(w.Body.Bytes(), &analytics); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if analytics.TraceabilityCoverage != 0 {
		t.Errorf("traceability coverage = %v, want 0", analytics.TraceabilityCoverage)
	}
}

func TestHandleSubgraph_ReturnsEmptySubgraphForEmptyStore(t *testing.T) {
	s := newTestServer(&fakeBackend{})
	w := doRequest(t, s, http.MethodGet, "/subgraph?from=2024-01-01&to=2024-12-31", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var sg query.Subgraph
	if err := json.Unmarshal(w.Body.Bytes(), &sg); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(sg.Nodes) != 0 || len(sg.Edges) != 0 {
		t.Errorf("expected empty subgraph, got %+v", sg)
	}
}

func TestHandleValidateSchema_InvalidWhenNoConstraintsExist(t *testing.T) {
	s := newTestServer(&fakeBackend{
		QueryFunc: func(ctx context.Context, q string, params map[string]any) ([]map[string]any, error) {
			if strings.Contains(q, "SHOW CONSTRAINTS") {
				return nil, nil
			}
			return nil, nil
		},
	})
	w := doRequest(t, s, http.MethodGet, "/validate/schema", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var report query.ValidationReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.Valid {
		t.Error("expected an invalid report when no constraints are present")
	}
}

func TestHandleCleanupOrphans_ReturnsDeletedCount(t *testing.T) {
	s := newTestServer(&fakeBackend{OrphansDeleted: 3})
	w := doRequest(t, s, http.MethodPost, "/cleanup/orphans", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := body["deleted"]; got != float64(3) {
		t.Errorf("deleted = %v, want 3", got)
	}
}

func TestHandleCleanupOrphans_PropagatesBackendError(t *testing.T) {
	s := newTestServer(&fakeBackend{OrphansErr: apperrors.StorePermanentError(context.DeadlineExceeded, "delete orphans")})
	w := doRequest(t, s, http.MethodPost, "/cleanup/orphans", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestHandleIngestStatus_UnknownJobIsBadRequest(t *testing.T) {
	s := newTestServer(&fakeBackend{})
	w := doRequest(t, s, http.MethodGet, "/ingest/status/does-not-exist", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestHandleIngestBootstrap_UnreadableRepoReturnsNotFound(t *testing.T) {
	s := newTestServer(&fakeBackend{})
	body, _ := json.Marshal(bootstrapRequest{RepoPath: "/nonexistent/repo/path"})
	w := doRequest(t, s, http.MethodPost, "/ingest/bootstrap", body)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Kind != "repository" {
		t.Errorf("kind = %q, want repository", resp.Kind)
	}
}

func TestHandleIngestStart_SecondConcurrentRunIsRejected(t *testing.T) {
	s := newTestServer(&fakeBackend{})

	// Start leaves the job registered as running (the pipeline goroutine
	// itself fails fast on the bad repo path, but the registry doesn't know
	// that until Finish runs) — a second Start against the same repo_path
	// must be rejected while the first is still tracked as running.
	body, _ := json.Marshal(bootstrapRequest{RepoPath: "/nonexistent/repo/path/for/start"})
	w1 := doRequest(t, s, http.MethodPost, "/ingest/start", body)
	if w1.Code != http.StatusAccepted {
		t.Fatalf("first start status = %d, body = %s", w1.Code, w1.Body.String())
	}

	w2 := doRequest(t, s, http.MethodPost, "/ingest/start", body)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("second start status = %d, body = %s", w2.Code, w2.Body.String())
	}
}

func TestHandleDeriveRelationships_RunsAllFamiliesAgainstEmptyStore(t *testing.T) {
	s := newTestServer(&fakeBackend{})
	w := doRequest(t, s, http.MethodPost, "/ingest/derive-relationships", []byte(`{"dry_run": true}`))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	edges, ok := resp["derived_edges"].(map[string]any)
	if !ok {
		t.Fatalf("derived_edges missing or wrong shape: %v", resp)
	}
	for _, family := range []string{"IMPLEMENTS", "EVOLVES_FROM", "DEPENDS_ON", "MENTIONS", "RELATES_TO", "CO_OCCURS_WITH"} {
		if _, ok := edges[family]; !ok {
			t.Errorf("derived_edges missing family %s", family)
		}
	}
}

func TestHandleDeriveRelationships_MalformedBodyIsBadRequest(t *testing.T) {
	s := newTestServer(&fakeBackend{})
	w := doRequest(t, s, http.MethodPost, "/ingest/derive-relationships", []byte("{not json"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
