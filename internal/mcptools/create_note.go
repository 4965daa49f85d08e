package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/store"
)

// CreateNoteHandler returns the handler function for the create_note MCP tool.
func CreateNoteHandler(st store.Store, userID string) func(ctx context.Context, req *mcp.CallToolRequest, input CreateNoteInput) (*mcp.CallToolResult, CreateNoteOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateNoteInput) (*mcp.CallToolResult, CreateNoteOutput, error) {
		n, err := notes.New(userID, input.Title, input.Content, input.Tags)
		if err != nil {
			return nil, CreateNoteOutput{}, err
		}

		if err := st.CreateNote(ctx, n); err != nil {
			return nil, CreateNoteOutput{}, err
		}

		return nil, CreateNoteOutput{
			ID:    n.ID,
			Title: n.Title,
			Date:  n.CreatedAt.Format("2006-01-02"),
		}, nil
	}
}
