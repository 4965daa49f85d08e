package cmd

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/voxrelay/voxctl/internal/mcptools"
)

var mcpServeCmd = &cobra.Command{
	Use:   "mcp-serve",
	Short: "Run MCP server on stdio",
	Long: `Starts a Model Context Protocol (MCP) server that exposes note tools
over stdio transport. This allows MCP clients like Claude Desktop to create
and search notes.

Available tools:
  - create_note: Create a note with a title, content, and tags
  - search_notes: Search notes by title and content

Example usage in Claude Desktop config:
  {
    "mcpServers": {
      "voxctl": {
        "command": "/path/to/voxctl",
        "args": ["mcp-serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	rootCmd.AddCommand(mcpServeCmd)
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	server := mcptools.CreateMCPServer(st, appConfig.UserID)

	// stdout is reserved for the MCP protocol; zerolog already writes to
	// stderr.
	log.Info().
		Str("storage", appConfig.Storage).
		Str("data_dir", appConfig.DataDir).
		Msg("starting voxctl MCP server (stdio transport)")

	return server.Run(ctx, &mcp.StdioTransport{})
}
