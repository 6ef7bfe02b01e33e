package httpapi

import "net/http"

// handleValidateSchema implements GET /validate/schema (§6, §8): confirms
// the constraints BootstrapSchema applies are actually present in the
// store.
func (s *Server) handleValidateSchema(w http.ResponseWriter, r *http.Request) {
	report, err := s.layer.ValidateSchema(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleValidateTemporal implements GET /validate/temporal (§6, §8):
// temporal edges always timestamped, structural edges never are.
func (s *Server) handleValidateTemporal(w http.ResponseWriter, r *http.Request) {
	report, err := s.layer.ValidateTemporal(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleValidateRelationships implements GET /validate/relationships (§6,
// §8): derived-edge confidence bounds, non-empty sources, and the
// requirements_without_part_of residual metric.
func (s *Server) handleValidateRelationships(w http.ResponseWriter, r *http.Request) {
	report, err := s.layer.ValidateRelationships(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleCleanupOrphans implements POST /cleanup/orphans (§6): deletes every
// node with no incident edges and reports how many were removed. This goes
// straight to graphstore.Backend rather than through the query layer, since
// orphan deletion is a write, not one of the Windowed Query Layer's read
// contracts.
func (s *Server) handleCleanupOrphans(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.backend.DeleteOrphanNodes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}
