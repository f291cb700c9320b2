package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/mnemo/pkg/documents"
)

var (
	rememberToolName    = "remember"
	rememberDescription = "Store a piece of text as a document in the memory system. The text is chunked, embedded, and indexed so later searches can recall it. Returns the document id and the number of chunks stored."
)

// RememberInput represents the input arguments for the remember tool.
type RememberInput struct {
	Name string `json:"name" jsonschema:"a short name for the stored text, used as its filename"`
	Text string `json:"text" jsonschema:"the text to store"`
}

// RememberOutput represents the structured output of a remember call.
type RememberOutput struct {
	Receipt documents.UploadReceipt `json:"receipt"`
}

// handleRemember processes a remember request via MCP.
func (s *Server) handleRemember(ctx context.Context, _ *mcp.CallToolRequest, input RememberInput) (*mcp.CallToolResult, RememberOutput, error) {
	if input.Name == "" {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "name is required"},
			},
		}, RememberOutput{}, nil
	}

	if input.Text == "" {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "text is required"},
			},
		}, RememberOutput{}, nil
	}

	receipt, err := s.config.Manager.Upload(ctx, input.Name, input.Text)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Remember failed: %v", err)},
			},
		}, RememberOutput{}, nil
	}

	output := RememberOutput{Receipt: receipt}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, RememberOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
