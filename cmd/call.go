package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxrelay/voxctl/internal/backend"
	"github.com/voxrelay/voxctl/internal/dispatch"
	"github.com/voxrelay/voxctl/internal/report"
	"github.com/voxrelay/voxctl/internal/toolcall"
	"github.com/voxrelay/voxctl/internal/ui"
)

var callParams []string

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Execute a single tool call",
	Long: `Runs one tool call through the dispatcher: local tools execute on this
machine, everything else is forwarded to the backend.

Examples:
  voxctl call play_music -p query="miles davis"
  voxctl call search_notes -p query=groceries
  voxctl call read_messages -p count=3`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringArrayVarP(&callParams, "param", "p", nil, "tool parameter as key=value (repeatable)")
	rootCmd.AddCommand(callCmd)
}

// parseParams converts repeated key=value flags into a tool parameter map.
func parseParams(pairs []string) (map[string]any, error) {
	params := map[string]any{}
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

func runCall(cmd *cobra.Command, args []string) error {
	params, err := parseParams(callParams)
	if err != nil {
		return err
	}

	client := backend.New(appConfig.BackendURL, appConfig.Secret)
	registry, err := buildRegistry(client)
	if err != nil {
		return err
	}
	disp := dispatch.New(registry, client)
	reporter := report.New(ui.NewPrinter(os.Stdout), client, appConfig.SessionID)

	call := toolcall.ToolCall{Name: args[0], Params: params}
	start := time.Now()
	res := disp.Dispatch(cmd.Context(), call)
	reporter.Report(cmd.Context(), call, res, time.Since(start))

	if !res.Success {
		return fmt.Errorf("tool %s failed", args[0])
	}
	return nil
}
