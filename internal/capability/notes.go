package capability

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

// NotePersister mirrors the backend notes:create mutation. Persistence is
// best effort; the local markdown copy is the source of truth for the device.
type NotePersister interface {
	PersistNote(ctx context.Context, n notes.Note) error
}

// Notes creates a note from a voice payload: a markdown file in the local
// notes directory plus an optional backend copy.
type Notes struct {
	Dir     string
	UserID  string
	Backend NotePersister
}

func NewNotes(dir, userID string, backend NotePersister) *Notes {
	return &Notes{Dir: dir, UserID: userID, Backend: backend}
}

func (n *Notes) Name() string { return toolcall.ActionCreateNote }

func (n *Notes) Execute(ctx context.Context, params map[string]any) toolcall.Result {
	title := toolcall.StringParam(params, "title", notes.DefaultTitle)
	content := toolcall.StringParam(params, "content", "")

	note, err := notes.New(n.UserID, title, content, nil)
	if err != nil {
		return toolcall.Failure("Error creating note: %v", err)
	}
	if err := notes.WriteFile(n.Dir, note); err != nil {
		return toolcall.Failure("Error saving note: %v", err)
	}

	if n.Backend != nil {
		if err := n.Backend.PersistNote(ctx, note); err != nil {
			log.Warn().Err(err).Str("note", note.ID).Msg("backend note persist failed")
		}
	}

	return toolcall.Result{
		Success: true,
		Data:    map[string]any{"noteId": note.ID},
		Message: "Note ready to save: " + note.Title,
	}
}
