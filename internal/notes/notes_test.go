package notes

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNew_DefaultTitle(t *testing.T) {
	n, err := New("u1", "  ", "content", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n.Title != DefaultTitle {
		t.Errorf("title = %q, want %q", n.Title, DefaultTitle)
	}
	if len(n.ID) != 8 {
		t.Errorf("ID = %q, want 8 characters", n.ID)
	}
}

func TestPreview(t *testing.T) {
	n := Note{Content: "line one\nline two that goes on for quite a while"}
	p := n.Preview(20)
	if len(p) != 20 {
		t.Errorf("preview length = %d, want 20", len(p))
	}
	if p[len(p)-3:] != "..." {
		t.Errorf("preview = %q, want ellipsis suffix", p)
	}
}

func TestMarkdownRoundTrip(t *testing.T) {
	dir := t.TempDir()
	created := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	n := Note{
		ID:        "abcd1234",
		UserID:    "u1",
		Title:     "Groceries",
		Content:   "milk\neggs",
		Tags:      []string{"shopping", "voice"},
		CreatedAt: created,
		UpdatedAt: created,
	}

	if err := WriteFile(dir, n); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(filepath.Join(dir, "abcd1234.md"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.ID != n.ID || got.Title != n.Title || got.UserID != n.UserID {
		t.Errorf("got %+v, want %+v", got, n)
	}
	if got.Content != n.Content {
		t.Errorf("content = %q, want %q", got.Content, n.Content)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "shopping" {
		t.Errorf("tags = %v", got.Tags)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, created)
	}
}

func TestReadDir_SortedNewestFirst(t *testing.T) {
	dir := t.TempDir()
	older := Note{ID: "older000", Title: "a", Content: "x", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := Note{ID: "newer000", Title: "b", Content: "y", CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	for _, n := range []Note{older, newer} {
		if err := WriteFile(dir, n); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	got, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(got) != 2 || got[0].ID != "newer000" {
		t.Fatalf("got order %v, want newest first", got)
	}
}

func TestReadDir_Missing(t *testing.T) {
	got, err := ReadDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ReadDir on missing dir: %v", err)
	}
	if got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
