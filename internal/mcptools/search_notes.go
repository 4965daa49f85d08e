package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/voxrelay/voxctl/internal/store"
)

// SearchNotesHandler returns the handler function for the search_notes MCP tool.
func SearchNotesHandler(st store.Store) func(ctx context.Context, req *mcp.CallToolRequest, input SearchNotesInput) (*mcp.CallToolResult, SearchNotesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchNotesInput) (*mcp.CallToolResult, SearchNotesOutput, error) {
		limit := input.Limit
		if limit <= 0 {
			limit = 10
		}

		matches, err := st.SearchNotes(ctx, input.Query, limit)
		if err != nil {
			return nil, SearchNotesOutput{}, err
		}

		var results []NoteResult
		for _, n := range matches {
			results = append(results, NoteResult{
				ID:      n.ID,
				Title:   n.Title,
				Preview: n.Preview(100),
				Date:    n.CreatedAt.Format("2006-01-02"),
			})
		}

		return nil, SearchNotesOutput{Notes: results}, nil
	}
}
