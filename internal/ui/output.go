// Package ui formats agent output for the terminal: styled result lines
// when attached to a TTY, plain text otherwise.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/store"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Printer writes formatted output. Styling is decided once at construction.
type Printer struct {
	w      io.Writer
	styled bool
}

// NewPrinter styles output when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{w: w, styled: styled}
}

// NewPlainPrinter never styles, for tests and piped output.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Result prints the confirmation or failure line for one tool execution.
func (p *Printer) Result(tool string, res toolcall.Result) {
	prefix := "✓"
	style := successStyle
	if !res.Success {
		prefix = "✗"
		style = failureStyle
	}
	line := fmt.Sprintf("%s %s: %s", prefix, tool, res.Message)
	if p.styled {
		line = style.Render(prefix) + fmt.Sprintf(" %s: %s", tool, res.Message)
	}
	fmt.Fprintln(p.w, line)
}

// NoteList prints one line per note.
func (p *Printer) NoteList(list []notes.Note) {
	if len(list) == 0 {
		fmt.Fprintln(p.w, "No notes found.")
		return
	}
	for _, n := range list {
		created := n.CreatedAt.Local().Format("2006-01-02 15:04")
		if p.styled {
			created = mutedStyle.Render(created)
		}
		fmt.Fprintf(p.w, "%s  %s  %s  %s\n", n.ID, created, n.Title, n.Preview(50))
	}
}

// NoteFull prints one note with a metadata header and rendered markdown body.
func (p *Printer) NoteFull(n notes.Note) {
	fmt.Fprintf(p.w, "Note: %s\n", n.ID)
	fmt.Fprintf(p.w, "Title: %s\n", n.Title)
	fmt.Fprintf(p.w, "Created: %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04"))
	if len(n.Tags) > 0 {
		fmt.Fprintf(p.w, "Tags: %s\n", strings.Join(n.Tags, ", "))
	}
	fmt.Fprintln(p.w)
	if p.styled {
		fmt.Fprintln(p.w, RenderMarkdown(n.Content, 80))
	} else {
		fmt.Fprintln(p.w, n.Content)
	}
}

// ExecutionList prints the execution log, newest first.
func (p *Printer) ExecutionList(execs []store.Execution) {
	if len(execs) == 0 {
		fmt.Fprintln(p.w, "No executions recorded.")
		return
	}
	for _, e := range execs {
		status := "ok"
		if !e.Success {
			status = "failed"
		}
		fmt.Fprintf(p.w, "%s  %-16s  %-6s  %dms  session=%s\n",
			millisToClock(e.Timestamp), e.ToolName, status, e.ExecutionTime, e.SessionID)
	}
}

func millisToClock(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04:05")
}
