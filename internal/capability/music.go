package capability

import (
	"context"
	"fmt"

	"github.com/voxrelay/voxctl/internal/toolcall"
)

// Track is one playable catalog entry.
type Track struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
}

// Player abstracts the device media player.
type Player interface {
	Authorized() bool
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	// PlayQuery searches the catalog and starts the best match.
	PlayQuery(ctx context.Context, query string) (Track, error)
	// Search returns matching tracks without changing playback.
	Search(ctx context.Context, query string) ([]Track, error)
}

// Music controls playback. The action parameter selects the operation and
// defaults to "play".
type Music struct {
	Player Player
}

func NewMusic(p Player) *Music { return &Music{Player: p} }

func (m *Music) Name() string { return "play_music" }

func (m *Music) Execute(ctx context.Context, params map[string]any) toolcall.Result {
	action := toolcall.StringParam(params, "action", "play")
	query := toolcall.StringParam(params, "query", "")

	if !m.Player.Authorized() {
		return toolcall.Failure("Music library access denied")
	}

	switch action {
	case "play":
		if query != "" {
			track, err := m.Player.PlayQuery(ctx, query)
			if err != nil {
				return toolcall.Failure("Error playing music: %v", err)
			}
			return toolcall.Result{
				Success: true,
				Data:    map[string]any{"song": track.Title, "artist": track.Artist},
				Message: fmt.Sprintf("Playing %s by %s", track.Title, track.Artist),
			}
		}
		if err := m.Player.Play(ctx); err != nil {
			return toolcall.Failure("Error playing music: %v", err)
		}
		return toolcall.Result{Success: true, Message: "Resumed playback"}

	case "pause":
		if err := m.Player.Pause(ctx); err != nil {
			return toolcall.Failure("Error pausing music: %v", err)
		}
		return toolcall.Result{Success: true, Message: "Paused playback"}

	case "next":
		if err := m.Player.Next(ctx); err != nil {
			return toolcall.Failure("Error skipping track: %v", err)
		}
		return toolcall.Result{Success: true, Message: "Skipped to next track"}

	case "previous":
		if err := m.Player.Previous(ctx); err != nil {
			return toolcall.Failure("Error skipping track: %v", err)
		}
		return toolcall.Result{Success: true, Message: "Skipped to previous track"}

	case "search":
		if query == "" {
			return toolcall.Failure("No search query provided")
		}
		tracks, err := m.Player.Search(ctx, query)
		if err != nil {
			return toolcall.Failure("Search error: %v", err)
		}
		return toolcall.Result{
			Success: true,
			Data:    map[string]any{"songs": tracks},
			Message: fmt.Sprintf("Found %d songs", len(tracks)),
		}

	default:
		return toolcall.Failure("Unknown music action")
	}
}
