package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/voxrelay/voxctl/internal/backend"
	"github.com/voxrelay/voxctl/internal/store"
	"github.com/voxrelay/voxctl/internal/ui"
)

var (
	historySession string
	historyLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the tool execution log",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historySession, "session", "", "show executions for one session")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum executions to return")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	client := backend.New(appConfig.BackendURL, appConfig.Secret)

	var execs []store.Execution
	var err error
	if historySession != "" {
		err = client.Query(cmd.Context(), "tools:getSessionHistory", map[string]any{
			"sessionId": historySession,
		}, &execs)
	} else {
		err = client.Query(cmd.Context(), "tools:getRecentExecutions", map[string]any{
			"limit": historyLimit,
		}, &execs)
	}
	if err != nil {
		return err
	}

	ui.NewPrinter(os.Stdout).ExecutionList(execs)
	return nil
}
