package httpapi

import (
	"net/http"
	"strconv"
	"strings"
)

// handleSubgraph implements GET /subgraph (§4.8): nodes of the requested
// types whose temporal attachment intersects [from, to], paginated by an
// opaque cursor.
func (s *Server) handleSubgraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := q.Get("from")
	to := q.Get("to")
	limit := parseIntDefault(q.Get("limit"), 0)
	cursor := q.Get("cursor")

	var nodeTypes []string
	if raw := q.Get("node_types"); raw != "" {
		nodeTypes = strings.Split(raw, ",")
	}

	sg, err := s.layer.Subgraph(r.Context(), from, to, nodeTypes, limit, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sg)
}

// handleCommitsBuckets implements GET /commits/buckets (§4.8): commit
// counts grouped into fixed-width time buckets.
func (s *Server) handleCommitsBuckets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	granularity := q.Get("granularity")
	from := q.Get("from")
	to := q.Get("to")
	maxBuckets := parseIntDefault(q.Get("max_buckets"), 0)

	buckets, err := s.layer.CommitsBuckets(r.Context(), granularity, from, to, maxBuckets)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

// handleSearch implements GET /search (§4.8): fulltext search over chunk and
// commit content, optionally restricted by node_type or relationship_type.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	nodeType := q.Get("node_type")
	relationshipType := q.Get("relationship_type")
	limit := parseIntDefault(q.Get("limit"), 0)

	sg, err := s.layer.Search(r.Context(), query, nodeType, relationshipType, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sg)
}

// handleStats implements GET /stats (§4.8, §6): consolidated node/edge
// totals in a single store round trip.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.layer.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleAnalytics implements GET /analytics (§6): node/edge counts by type,
// traceability coverage, activity per day, and peak activity day.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.layer.Analytics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
