package cmd

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/voxrelay/voxctl/internal/search"
	"github.com/voxrelay/voxctl/internal/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backend server",
	Long: `Starts the voxctl backend: the tool-call webhook, the document-store
query/mutation API, the live event channel, and the metrics endpoint.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := server.Options{
		Secret: appConfig.Secret,
		Web:    search.NewBrave(appConfig.BraveAPIKey),
		Shop:   search.NewSerper(appConfig.SerperAPIKey),
	}
	if tasks, err := search.NewTaskRunner(ctx, appConfig.GeminiAPIKey, ""); err != nil {
		log.Warn().Err(err).Msg("task agent unavailable")
	} else if tasks != nil {
		opts.Tasks = tasks
	}

	srv := server.New(st, opts)

	addr := appConfig.Listen
	if listenAddr != "" {
		addr = listenAddr
	}

	log.Info().
		Str("addr", addr).
		Str("storage", appConfig.Storage).
		Msg("backend listening")

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return httpSrv.ListenAndServe()
}
