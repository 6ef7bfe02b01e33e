// Package mcpserver exposes the Windowed Query Layer's three read contracts
// — subgraph, search, stats — as MCP tools, so an editor or AI client can
// query the graph the same way the HTTP surface does, with no additional
// business logic layered on top (DS.10: "mirroring the HTTP surface 1:1").
//
// Grounded on the teacher's internal/mcp package for the shape of the idea
// (a stdio-served tool surface sitting in front of a graph-store-backed
// query layer) but not its code: the teacher hand-rolls JSON-RPC framing
// (internal/mcp/handler.go, stdio_transport.go) instead of importing its own
// declared github.com/modelcontextprotocol/go-sdk dependency, which this
// package uses directly — its typed mcp.AddTool registration makes the
// teacher's hand-written JSON-RPC dispatch, schema maps, and stdio scanner
// loop unnecessary here.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rohankatakam/devgraph/internal/graphstore"
	"github.com/rohankatakam/devgraph/internal/query"
)

// Server binds the three read-only MCP tools to the query layer each one
// delegates to; backend is held alongside it but no tool calls it.
type Server struct {
	layer   *query.Layer
	backend graphstore.Backend
	mcp     *mcp.Server
}

// New builds a Server and registers its tools, ready for Run.
func New(layer *query.Layer, backend graphstore.Backend) *Server {
	impl := &mcp.Implementation{Name: "devgraph", Version: "0.1.0"}
	s := &Server{layer: layer, backend: backend, mcp: mcp.NewServer(impl, nil)}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "subgraph",
		Description: "Return nodes of the requested types whose temporal attachment intersects [from, to], plus the edges among them.",
	}, s.handleSubgraph)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search",
		Description: "Fulltext search over chunk and commit content, optionally restricted by node or relationship type.",
	}, s.handleSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "stats",
		Description: "Consolidated node and edge counts by type, computed in a single store query.",
	}, s.handleStats)
}

// Run serves the registered tools over stdio until ctx is cancelled —
// the transport an editor/AI client launching this as a subprocess expects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
