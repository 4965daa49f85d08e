package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/voxrelay/voxctl/internal/backend"
	"github.com/voxrelay/voxctl/internal/capability"
	"github.com/voxrelay/voxctl/internal/dispatch"
	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/photos"
	"github.com/voxrelay/voxctl/internal/relay"
	"github.com/voxrelay/voxctl/internal/report"
	"github.com/voxrelay/voxctl/internal/session"
	"github.com/voxrelay/voxctl/internal/store"
	"github.com/voxrelay/voxctl/internal/toolcall"
	"github.com/voxrelay/voxctl/internal/ui"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the on-device agent",
	Long: `Runs the device-side agent: connects the live channel, polls the command
queue, executes local tool calls, and mirrors the backend note list into the
local notes directory.`,
	RunE: runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)
}

// buildRegistry wires the local capabilities against the data directory.
func buildRegistry(client *backend.Client) (*capability.Registry, error) {
	dataDir := appConfig.DataDir

	lib, err := photos.OpenFileLibrary(filepath.Join(dataDir, "photos.json"))
	if err != nil {
		return nil, err
	}
	catalog, err := capability.LoadCatalog(filepath.Join(dataDir, "music.json"))
	if err != nil {
		return nil, err
	}

	return capability.NewRegistry(
		capability.NewPhotos(lib),
		capability.NewNotes(filepath.Join(dataDir, "notes"), appConfig.UserID, client),
		capability.NewMusic(capability.NewLocalPlayer(catalog)),
		capability.NewMessages(&capability.FileInbox{Path: filepath.Join(dataDir, "inbox.json")}),
	), nil
}

// websocketURL derives the live channel endpoint from the backend base URL.
func websocketURL(base string) string {
	url := strings.TrimSuffix(base, "/")
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url + "/ws"
}

func runAgent(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := backend.New(appConfig.BackendURL, appConfig.Secret)
	registry, err := buildRegistry(client)
	if err != nil {
		return err
	}

	disp := dispatch.New(registry, client)
	printer := ui.NewPrinter(os.Stdout)
	reporter := report.New(printer, client, appConfig.SessionID)
	dedupe := relay.NewDeduper()

	// The live channel and the poller can deliver the same command; the
	// dedupe claim decides which path runs it.
	handler := func(ctx context.Context, c store.Command) toolcall.Result {
		if !dedupe.Claim(c.Action, c.Timestamp) {
			return toolcall.Result{Success: true, Message: "Command already executed"}
		}
		call := toolcall.ToolCall{Name: c.Action, Params: c.Params, CallID: c.ID}
		start := time.Now()
		res := disp.Dispatch(ctx, call)
		reporter.Report(ctx, call, res, time.Since(start))
		return res
	}

	live := session.New(websocketURL(appConfig.BackendURL), handler)
	go live.RunWithReconnect(ctx, 3*time.Second)

	poller := relay.NewPoller(client, disp, reporter, dedupe, appConfig.PollInterval)
	go poller.Run(ctx)

	notesDir := filepath.Join(appConfig.DataDir, "notes")
	syncer := relay.NewNotesSync(client, appConfig.UserID, appConfig.SyncInterval, func(list []notes.Note) {
		for _, n := range list {
			if err := notes.WriteFile(notesDir, n); err != nil {
				log.Warn().Err(err).Str("note", n.ID).Msg("note mirror write failed")
			}
		}
	})
	go syncer.Run(ctx)

	log.Info().
		Str("backend", appConfig.BackendURL).
		Str("user", appConfig.UserID).
		Msg("agent running")

	<-ctx.Done()
	return nil
}
