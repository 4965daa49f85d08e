package relay

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voxrelay/voxctl/internal/notes"
)

// NotesSync mirrors the backend note list on a fixed interval. Each
// successful fetch replaces the previous snapshot wholesale.
type NotesSync struct {
	backend  Backend
	userID   string
	interval time.Duration
	onUpdate func([]notes.Note)
}

func NewNotesSync(backend Backend, userID string, interval time.Duration, onUpdate func([]notes.Note)) *NotesSync {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &NotesSync{backend: backend, userID: userID, interval: interval, onUpdate: onUpdate}
}

// Run syncs until the context ends; fetch failures are logged and skipped.
func (s *NotesSync) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sync(ctx)
		}
	}
}

// Sync performs one fetch-and-replace cycle.
func (s *NotesSync) Sync(ctx context.Context) {
	var list []notes.Note
	err := s.backend.Query(ctx, "notes:list", map[string]any{"userId": s.userID}, &list)
	if err != nil {
		log.Warn().Err(err).Msg("notes sync failed")
		return
	}
	s.onUpdate(list)
}
