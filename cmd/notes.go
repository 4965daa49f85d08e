package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voxrelay/voxctl/internal/backend"
	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/ui"
)

var (
	noteTitle string
	noteTags  []string
	noteLimit int
	exportDir string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Manage notes",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := backend.New(appConfig.BackendURL, appConfig.Secret)
		var list []notes.Note
		err := client.Query(cmd.Context(), "notes:list", map[string]any{
			"userId": appConfig.UserID,
			"limit":  noteLimit,
		}, &list)
		if err != nil {
			return err
		}
		ui.NewPrinter(os.Stdout).NoteList(list)
		return nil
	},
}

var notesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := backend.New(appConfig.BackendURL, appConfig.Secret)
		var list []notes.Note
		err := client.Query(cmd.Context(), "notes:list", map[string]any{
			"userId": appConfig.UserID,
		}, &list)
		if err != nil {
			return err
		}
		for _, n := range list {
			if n.ID == args[0] {
				ui.NewPrinter(os.Stdout).NoteFull(n)
				return nil
			}
		}
		return fmt.Errorf("note %s not found", args[0])
	},
}

var notesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search notes by title and content",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := backend.New(appConfig.BackendURL, appConfig.Secret)
		var list []notes.Note
		err := client.Query(cmd.Context(), "notes:search", map[string]any{
			"query": strings.Join(args, " "),
			"limit": noteLimit,
		}, &list)
		if err != nil {
			return err
		}
		ui.NewPrinter(os.Stdout).NoteList(list)
		return nil
	},
}

var notesCreateCmd = &cobra.Command{
	Use:   "create <content>",
	Short: "Create a note",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := backend.New(appConfig.BackendURL, appConfig.Secret)
		var created notes.Note
		err := client.Mutation(cmd.Context(), "notes:create", map[string]any{
			"userId":  appConfig.UserID,
			"title":   noteTitle,
			"content": strings.Join(args, " "),
			"tags":    noteTags,
		}, &created)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Created note %s: %s\n", created.ID, created.Title)
		return nil
	},
}

var notesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export notes as markdown files",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := backend.New(appConfig.BackendURL, appConfig.Secret)
		var list []notes.Note
		err := client.Query(cmd.Context(), "notes:list", map[string]any{
			"userId": appConfig.UserID,
		}, &list)
		if err != nil {
			return err
		}
		dir := exportDir
		if dir == "" {
			dir = filepath.Join(appConfig.DataDir, "notes")
		}
		for _, n := range list {
			if err := notes.WriteFile(dir, n); err != nil {
				return err
			}
		}
		fmt.Fprintf(os.Stdout, "Exported %d notes to %s\n", len(list), dir)
		return nil
	},
}

func init() {
	notesListCmd.Flags().IntVar(&noteLimit, "limit", 50, "maximum notes to return")
	notesSearchCmd.Flags().IntVar(&noteLimit, "limit", 10, "maximum notes to return")
	notesCreateCmd.Flags().StringVarP(&noteTitle, "title", "t", "", "note title")
	notesCreateCmd.Flags().StringSliceVar(&noteTags, "tag", nil, "note tag (repeatable)")
	notesExportCmd.Flags().StringVar(&exportDir, "dir", "", "export directory (defaults to the data dir)")

	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesShowCmd)
	notesCmd.AddCommand(notesSearchCmd)
	notesCmd.AddCommand(notesCreateCmd)
	notesCmd.AddCommand(notesExportCmd)
	rootCmd.AddCommand(notesCmd)
}
