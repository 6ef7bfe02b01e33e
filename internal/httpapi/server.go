// Package httpapi is the thin HTTP/RPC contract surface named by spec.md §1
// ("the HTTP shell is treated purely as an external collaborator via a thin
// contract") and enumerated in full in its §6 endpoint table. Every handler
// is a direct call into internal/orchestrator, internal/query, or
// internal/graphstore — no business logic lives in this package, only
// request decoding, response encoding, and error-to-status mapping.
//
// Built on github.com/go-chi/chi/v5 and github.com/go-chi/cors. The pipeline
// this engine adapts from has no HTTP framework of its own (it is a CLI),
// but the chi+cors pairing is grounded on the pack's ternarybob-iter
// manifest, which lists exactly these two modules for a lightweight REST
// surface, so it's adopted here rather than raw net/http muxing or a
// heavier framework.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rohankatakam/devgraph/internal/config"
	"github.com/rohankatakam/devgraph/internal/graphstore"
	"github.com/rohankatakam/devgraph/internal/orchestrator"
	"github.com/rohankatakam/devgraph/internal/query"
)

// Server binds the HTTP surface to the collaborators every handler calls
// straight into.
type Server struct {
	cfg      *config.Config
	client   *graphstore.Client
	registry *orchestrator.Registry
	layer    *query.Layer
	backend  graphstore.Backend
	logger   *slog.Logger
}

// NewServer binds a Server to its collaborators. cfg is the base
// configuration every /ingest/* request's body is overlaid onto before a
// fresh orchestrator.Pipeline is built for that run — a Pipeline is a cheap,
// stateless binding of config to the shared client/backend, so building one
// per request is simpler than threading per-request overrides through a
// long-lived Pipeline. registry tracks/serialises runs, layer backs the
// read contracts (/subgraph, /commits/buckets, /search, /stats, /analytics,
// /validate/*), and backend backs /cleanup/orphans directly since orphan
// deletion isn't part of the windowed query layer's read-only contract.
func NewServer(cfg *config.Config, client *graphstore.Client, registry *orchestrator.Registry, layer *query.Layer, backend graphstore.Backend) *Server {
	return &Server{
		cfg:      cfg,
		client:   client,
		registry: registry,
		layer:    layer,
		backend:  backend,
		logger:   slog.Default().With("component", "httpapi"),
	}
}

// Router builds the full route table behind chi's request ID, recoverer,
// and timeout middleware plus a permissive CORS policy — this surface is
// meant for same-host tooling and editor/AI clients (DS.10), not a public
// multi-tenant deployment, so the CORS policy stays wide open rather than
// allowlist-based.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Timeout(5 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		MaxAge:           300,
	}))

	r.Route("/ingest", func(r chi.Router) {
		r.Post("/bootstrap", s.handleIngestBootstrap)
		r.Post("/start", s.handleIngestStart)
		r.Post("/derive-relationships", s.handleDeriveRelationships)
		r.Get("/status/{job_id}", s.handleIngestStatus)
	})

	r.Get("/subgraph", s.handleSubgraph)
	r.Get("/commits/buckets", s.handleCommitsBuckets)
	r.Get("/search", s.handleSearch)

	r.Route("/validate", func(r chi.Router) {
		r.Get("/schema", s.handleValidateSchema)
		r.Get("/temporal", s.handleValidateTemporal)
		r.Get("/relationships", s.handleValidateRelationships)
	})

	r.Post("/cleanup/orphans", s.handleCleanupOrphans)

	r.Get("/stats", s.handleStats)
	r.Get("/analytics", s.handleAnalytics)

	return r
}

// requestLogger logs each request's method, path, status, and duration at
// info level — the shell's own concern, distinct from the structured
// apperrors.Error a handler returns on failure.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		s.logger.Info("request", "method", req.Method, "path", req.URL.Path,
			"status", ww.Status(), "duration", time.Since(start).String())
	})
}
