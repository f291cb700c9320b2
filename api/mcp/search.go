package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/mnemo/pkg/memory"
)

var (
	searchToolName    = "search"
	searchDescription = "Search stored documents using semantic search. Returns the most relevant document segments for the query text, with similarity scores and source metadata."
)

// SearchInput represents the input arguments for the search tool.
type SearchInput struct {
	Query  string            `json:"query" jsonschema:"the search query text to find relevant document segments"`
	TopK   int               `json:"top_k,omitempty" jsonschema:"number of results to return (default: 5)"`
	Filter map[string]string `json:"filter,omitempty" jsonschema:"metadata key/value pairs results must match"`
}

// SearchOutput represents the output of the search tool.
type SearchOutput struct {
	Query   string                `json:"query"`
	Results []memory.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// handleSearch processes a search request.
func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	logger := s.config.Logger

	topK := input.TopK
	if topK <= 0 {
		topK = 5
	}

	var filter memory.Metadata
	if len(input.Filter) > 0 {
		filter = make(memory.Metadata, len(input.Filter))
		for k, v := range input.Filter {
			filter[k] = v
		}
	}

	logger.Debug("MCP search request",
		"query", input.Query,
		"top_k", topK,
	)

	results, err := s.config.Orchestrator.Search(ctx, memory.SearchQuery{
		Text:   input.Query,
		TopK:   topK,
		Filter: filter,
	})
	if err != nil {
		logger.Error("MCP search failed", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Search failed: %v", err)},
			},
		}, SearchOutput{}, nil
	}

	output := SearchOutput{
		Query:   input.Query,
		Results: results,
		Count:   len(results),
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal search output", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, SearchOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
