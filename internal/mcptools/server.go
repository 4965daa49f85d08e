// Package mcptools exposes the note store as MCP tools so external
// assistants can create and search notes over a standard transport.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/voxrelay/voxctl/internal/store"
)

// NewVoxMCPServer creates an in-memory MCP server exposing note tools.
// Returns the server and a client transport for connecting to it.
func NewVoxMCPServer(st store.Store, userID string) (*mcp.Server, mcp.Transport) {
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	server := CreateMCPServer(st, userID)

	go func() {
		_, _ = server.Connect(context.Background(), serverTransport, nil)
	}()

	return server, clientTransport
}

// CreateMCPServer creates an MCP server with registered note tools.
func CreateMCPServer(st store.Store, userID string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "voxctl",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_note",
		Description: "Create a note with a title, content, and optional tags",
	}, CreateNoteHandler(st, userID))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_notes",
		Description: "Search notes by title and content",
	}, SearchNotesHandler(st))

	return server
}
