package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rohankatakam/devgraph/internal/apperrors"
	"github.com/rohankatakam/devgraph/internal/config"
	"github.com/rohankatakam/devgraph/internal/graphstore"
	"github.com/rohankatakam/devgraph/internal/httpapi"
	"github.com/rohankatakam/devgraph/internal/jobstore"
	"github.com/rohankatakam/devgraph/internal/mcpserver"
	"github.com/rohankatakam/devgraph/internal/orchestrator"
	"github.com/rohankatakam/devgraph/internal/query"
)

// exitCodeForErr maps the error taxonomy to spec.md §6's CLI exit codes:
// 0 success, 2 configuration error, 3 repository unreadable, 4 graph-store
// unreachable, 5 stage failure, 130 cancelled.
func exitCodeForErr(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return 1
	}

	switch appErr.Type {
	case apperrors.Config, apperrors.Validation:
		return 2
	case apperrors.Repository, apperrors.FileSystem:
		return 3
	case apperrors.StoreTransient, apperrors.StorePermanent:
		return 4
	case apperrors.Cancellation:
		return 130
	default:
		return 5
	}
}

// stores bundles the handles every subcommand but start/status needs:
// a raw Client for schema DDL, a Backend for reads and writes, a windowed
// query Layer over that Backend, and a job Registry backed by the
// configured (possibly no-op) durable store.
type stores struct {
	client   *graphstore.Client
	backend  graphstore.Backend
	layer    *query.Layer
	registry *orchestrator.Registry
}

// connect validates cfg, opens the graph store, and wires the query layer
// and job registry on top of it. Connectivity failures surface as
// exit code 4 ("graph-store unreachable"); a failed validation surfaces
// as exit code 2 before any network call is attempted.
func connect(ctx context.Context, cfg *config.Config) (*stores, error) {
	if err := cfg.RequireGraphStore(); err != nil {
		return nil, err
	}

	client, err := graphstore.NewClient(ctx, cfg.GraphStoreURL, cfg.GraphStoreUser, cfg.GraphStorePassword, "")
	if err != nil {
		return nil, apperrors.StoreTransientError(err, "cannot reach the graph store")
	}

	backend, err := graphstore.NewNeo4jBackend(ctx, cfg.GraphStoreURL, cfg.GraphStoreUser, cfg.GraphStorePassword, "")
	if err != nil {
		return nil, apperrors.StoreTransientError(err, "cannot reach the graph store")
	}

	store, err := jobstore.New(cfg.JobStore, logger)
	if err != nil {
		return nil, apperrors.ConfigErrorf("job store: %v", err)
	}

	layer := query.NewLayer(backend, 20, 10)
	registry := orchestrator.NewRegistry(store)

	return &stores{client: client, backend: backend, layer: layer, registry: registry}, nil
}

func newHTTPServer(st *stores) *httpapi.Server {
	return httpapi.NewServer(cfg, st.client, st.registry, st.layer, st.backend)
}

func newMCPServer(st *stores) *mcpserver.Server {
	return mcpserver.New(st.layer, st.backend)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(b))
}
