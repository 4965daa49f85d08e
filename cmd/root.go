package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/voxrelay/voxctl/internal/config"
	"github.com/voxrelay/voxctl/internal/store"
	"github.com/voxrelay/voxctl/internal/store/mongo"
	"github.com/voxrelay/voxctl/internal/store/sqlite"
)

var (
	cfgFile        string
	storageBackend string
	appConfig      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "voxctl",
	Short: "Voice assistant tool-call relay",
	Long:  "voxctl runs the voice assistant backend and the on-device agent that executes local tool calls.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		appConfig = cfg

		if storageBackend != "" {
			appConfig.Storage = storageBackend
		}

		// Logs go to stderr; stdout is reserved for command output.
		if appConfig.LogJSON {
			log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		} else {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		}

		return nil
	},
}

// openStore initializes the configured storage backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch appConfig.Storage {
	case "sqlite":
		st, err := sqlite.New(appConfig.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing sqlite storage: %w", err)
		}
		return st, nil
	case "mongo":
		st, err := mongo.New(ctx, appConfig.MongoURI, "voxctl")
		if err != nil {
			return nil, fmt.Errorf("initializing mongo storage: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", appConfig.Storage)
	}
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&storageBackend, "storage", "", "storage backend (sqlite|mongo)")

	// Silence Cobra's built-in error and usage printing so we control stderr output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}
