// Package api provides the HTTP API server for uploading, searching and
// deleting documents.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// EnableMCP mounts the MCP server under /mcp when true.
	EnableMCP bool
}

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
