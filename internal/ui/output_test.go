package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

func TestPrinter_Result(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	p.Result("web_search", toolcall.Result{Success: true, Message: "three links"})
	p.Result("play_music", toolcall.Result{Success: false, Message: "Unknown music action"})

	out := buf.String()
	if !strings.Contains(out, "✓ web_search: three links") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "✗ play_music: Unknown music action") {
		t.Errorf("output = %q", out)
	}
}

func TestPrinter_NoteList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainPrinter(&buf)

	p.NoteList(nil)
	if !strings.Contains(buf.String(), "No notes found.") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	p.NoteList([]notes.Note{{
		ID: "abcd1234", Title: "Groceries", Content: "milk",
		CreatedAt: time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
	}})
	out := buf.String()
	if !strings.Contains(out, "abcd1234") || !strings.Contains(out, "Groceries") {
		t.Errorf("output = %q", out)
	}
}

func TestRenderMarkdown_EmptyAndFallback(t *testing.T) {
	if got := RenderMarkdown("", 80); got != "" {
		t.Errorf("empty content rendered to %q", got)
	}
	if got := RenderMarkdown("# Title", 80); got == "" {
		t.Error("non-empty content rendered to nothing")
	}
}
