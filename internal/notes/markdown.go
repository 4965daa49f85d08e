package notes

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// Markdown interchange: one file per note with YAML front-matter, used by
// the local device notes directory and by import/export.

type frontMatter struct {
	ID        string   `yaml:"id"`
	UserID    string   `yaml:"user_id"`
	Title     string   `yaml:"title"`
	Tags      []string `yaml:"tags"`
	CreatedAt string   `yaml:"created_at"`
	UpdatedAt string   `yaml:"updated_at"`
}

func marshal(n Note) []byte {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "id: %s\n", n.ID)
	if n.UserID != "" {
		fmt.Fprintf(&b, "user_id: %s\n", n.UserID)
	}
	fmt.Fprintf(&b, "title: %q\n", n.Title)
	if len(n.Tags) > 0 {
		b.WriteString("tags:\n")
		for _, tag := range n.Tags {
			fmt.Fprintf(&b, "  - %s\n", tag)
		}
	}
	fmt.Fprintf(&b, "created_at: %s\n", n.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "updated_at: %s\n", n.UpdatedAt.UTC().Format(time.RFC3339))
	b.WriteString("---\n\n")
	b.WriteString(n.Content)
	return []byte(b.String())
}

// WriteFile persists a note as markdown under dir, named by its ID.
func WriteFile(dir string, n Note) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating notes directory: %w", err)
	}
	path := filepath.Join(dir, n.ID+".md")
	if err := os.WriteFile(path, marshal(n), 0644); err != nil {
		return fmt.Errorf("writing note %s: %w", n.ID, err)
	}
	return nil
}

// ReadFile parses one markdown note file.
func ReadFile(path string) (Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Note{}, fmt.Errorf("reading note file: %w", err)
	}
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return Note{}, fmt.Errorf("parsing front-matter of %s: %w", path, err)
	}

	n := Note{
		ID:      fm.ID,
		UserID:  fm.UserID,
		Title:   fm.Title,
		Tags:    fm.Tags,
		Content: strings.TrimSpace(string(body)),
	}
	if n.ID == "" {
		n.ID = strings.TrimSuffix(filepath.Base(path), ".md")
	}
	if n.Title == "" {
		n.Title = DefaultTitle
	}
	if t, err := time.Parse(time.RFC3339, fm.CreatedAt); err == nil {
		n.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, fm.UpdatedAt); err == nil {
		n.UpdatedAt = t
	}
	return n, nil
}

// ReadDir loads every markdown note under dir, newest first. A missing
// directory yields no notes.
func ReadDir(dir string) ([]Note, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading notes directory: %w", err)
	}

	var out []Note
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		n, err := ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
