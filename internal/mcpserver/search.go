package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rohankatakam/devgraph/internal/query"
)

// SearchInput mirrors /search's query parameters (§4.8).
type SearchInput struct {
	Query            string `json:"q" jsonschema:"fulltext search query"`
	NodeType         string `json:"node_type,omitempty" jsonschema:"restrict to Chunk or GitCommit; both if omitted"`
	RelationshipType string `json:"relationship_type,omitempty" jsonschema:"restrict to nodes participating in at least one edge of this type"`
	Limit            int    `json:"limit,omitempty" jsonschema:"max results, default 50, max 500"`
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, query.Subgraph, error) {
	sg, err := s.layer.Search(ctx, in.Query, in.NodeType, in.RelationshipType, in.Limit)
	if err != nil {
		return nil, query.Subgraph{}, err
	}
	return nil, sg, nil
}
