package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rohankatakam/devgraph/internal/query"
)

// StatsInput is empty: /stats and this tool both take no parameters,
// computing consolidated totals over the whole graph.
type StatsInput struct{}

func (s *Server) handleStats(ctx context.Context, _ *mcp.CallToolRequest, _ StatsInput) (*mcp.CallToolResult, query.Stats, error) {
	stats, err := s.layer.Stats(ctx)
	if err != nil {
		return nil, query.Stats{}, err
	}
	return nil, stats, nil
}
