package notes

import (
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 8
)

// DefaultTitle is used when a voice payload arrives without one.
const DefaultTitle = "Voice Note"

// Note is a single stored note.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewID generates a new nanoid for a note.
func NewID() (string, error) {
	return gonanoid.Generate(idAlphabet, idLength)
}

// New builds a note with a fresh ID and timestamps. An empty title falls
// back to DefaultTitle rather than failing the call.
func New(userID, title, content string, tags []string) (Note, error) {
	id, err := NewID()
	if err != nil {
		return Note{}, fmt.Errorf("generating note ID: %w", err)
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	now := time.Now()
	return Note{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Content:   content,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Preview returns a truncated single-line preview of the note content.
func (n *Note) Preview(maxLen int) string {
	content := strings.ReplaceAll(n.Content, "\n", " ")
	if len(content) <= maxLen {
		return content
	}
	return content[:maxLen-3] + "..."
}
