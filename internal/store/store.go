package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voxrelay/voxctl/internal/notes"
)

// Sentinel errors for store operations.
var (
	ErrNotFound   = errors.New("record not found")
	ErrStorage    = errors.New("storage error")
	ErrValidation = errors.New("validation error")
)

// Settings is the per-user profile. Exactly one row exists per user ID;
// Save patches the existing row or inserts a new one.
type Settings struct {
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Bio            string    `json:"bio,omitempty"`
	FavoriteMusic  string    `json:"favoriteMusic,omitempty"`
	FavoriteMovies string    `json:"favoriteMovies,omitempty"`
	Summary        string    `json:"summary,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ComputeSummary derives the one-line profile summary handed to the voice
// assistant as a personalization variable.
func (s *Settings) ComputeSummary() string {
	summary := fmt.Sprintf("User %s (%s). ", s.Name, s.Email)
	if s.Bio != "" {
		summary += fmt.Sprintf("Bio: %s. ", s.Bio)
	}
	if s.FavoriteMusic != "" {
		summary += fmt.Sprintf("Likes %s music. ", s.FavoriteMusic)
	}
	if s.FavoriteMovies != "" {
		summary += fmt.Sprintf("Enjoys %s movies.", s.FavoriteMovies)
	}
	return summary
}

// Contact is an address-book entry used for voice-command name resolution.
type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Command is a relay-queue record: an action the device should execute
// locally. Records are marked executed when drained, never deleted.
type Command struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Params    map[string]any `json:"params"`
	Timestamp int64          `json:"timestamp"` // unix millis
	Executed  bool           `json:"executed"`
}

// Execution is one entry of the durable tool execution log.
type Execution struct {
	ID            string         `json:"id"`
	SessionID     string         `json:"sessionId"`
	ToolName      string         `json:"toolName"`
	Input         map[string]any `json:"input"`
	Output        any            `json:"output"`
	Success       bool           `json:"success"`
	ExecutionTime int64          `json:"executionTime"` // unix millis
	Timestamp     int64          `json:"timestamp"`
}

// Event is a realtime notification record clients drain.
type Event struct {
	ID        string         `json:"id"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data"`
	Timestamp int64          `json:"timestamp"`
	Processed bool           `json:"processed"`
}

// NotePatch carries optional note updates; nil fields are left untouched.
type NotePatch struct {
	Title   *string
	Content *string
	Tags    []string
}

// ContactPatch carries optional contact updates; nil fields are left
// untouched.
type ContactPatch struct {
	Name     *string
	Email    *string
	Nickname *string
}

// Store is the document-store surface behind the backend functions. Both
// backends (sqlite, mongo) implement it.
type Store interface {
	// Notes
	CreateNote(ctx context.Context, n notes.Note) error
	ListNotes(ctx context.Context, userID string, limit int) ([]notes.Note, error)
	UpdateNote(ctx context.Context, id string, patch NotePatch) error
	DeleteNote(ctx context.Context, id string) error
	SearchNotes(ctx context.Context, query string, limit int) ([]notes.Note, error)

	// Settings (upsert, one row per user)
	GetSettings(ctx context.Context, userID string) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) (Settings, error)

	// Contacts
	ListContacts(ctx context.Context, userID string) ([]Contact, error)
	AddContact(ctx context.Context, c Contact) (Contact, error)
	UpdateContact(ctx context.Context, id string, patch ContactPatch) error
	DeleteContact(ctx context.Context, id string) error
	FindContactByName(ctx context.Context, userID, name string) (Contact, error)

	// Relay command queue; DrainCommands is an atomic read+mark giving
	// at-most-once delivery per record.
	AddCommand(ctx context.Context, action string, params map[string]any) (Command, error)
	DrainCommands(ctx context.Context) ([]Command, error)

	// Execution log
	LogExecution(ctx context.Context, e Execution) error
	SessionHistory(ctx context.Context, sessionID string) ([]Execution, error)
	RecentExecutions(ctx context.Context, limit int) ([]Execution, error)

	// Realtime events
	AddEvent(ctx context.Context, event string, data map[string]any) error
	DrainEvents(ctx context.Context, limit int) ([]Event, error)

	Close() error
}
