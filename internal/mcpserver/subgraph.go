package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rohankatakam/devgraph/internal/query"
)

// SubgraphInput mirrors /subgraph's query parameters (§4.8).
type SubgraphInput struct {
	From      string `json:"from,omitempty" jsonschema:"inclusive start of the temporal window (ISO-8601)"`
	To        string `json:"to,omitempty" jsonschema:"inclusive end of the temporal window (ISO-8601)"`
	NodeTypes string `json:"node_types,omitempty" jsonschema:"comma-separated node labels to include; all known labels if omitted"`
	Limit     int    `json:"limit,omitempty" jsonschema:"max nodes per label, default 200, max 1000"`
	Cursor    string `json:"cursor,omitempty" jsonschema:"opaque pagination cursor from a previous call's next_cursor"`
}

func (s *Server) handleSubgraph(ctx context.Context, _ *mcp.CallToolRequest, in SubgraphInput) (*mcp.CallToolResult, query.Subgraph, error) {
	var nodeTypes []string
	if in.NodeTypes != "" {
		nodeTypes = strings.Split(in.NodeTypes, ",")
	}
	sg, err := s.layer.Subgraph(ctx, in.From, in.To, nodeTypes, in.Limit, in.Cursor)
	if err != nil {
		return nil, query.Subgraph{}, err
	}
	return nil, sg, nil
}
