package toolcall

import (
	"fmt"
)

// Site identifies where a tool call executes.
type Site int

const (
	// SiteLocal means the call runs on the device through the capability registry.
	SiteLocal Site = iota
	// SiteRemote means the call is forwarded to the backend tool handler.
	SiteRemote
)

// ToolCall is a single invocation request, arriving either from the live
// voice session (with a CallID that a result must be keyed by) or from the
// polled command relay (no CallID).
type ToolCall struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
	CallID string         `json:"callId,omitempty"`
}

// Result is the outcome of executing a ToolCall. Message is surfaced
// verbatim as the spoken/displayed response; a call never completes silently.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

// Failure builds a failed Result with a formatted message.
func Failure(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// ErrUnknownTool formats the error message for an unrecognized tool name.
func ErrUnknownTool(name string) Result {
	return Result{Success: false, Message: fmt.Sprintf("Unknown tool: %s", name)}
}

// Note-creation arrived under several names during voice SDK integration.
// They are folded into one canonical action at the boundary; all spellings
// stay accepted as input.
const ActionCreateNote = "create_note"

var noteAliases = map[string]bool{
	"create_note":        true,
	"create_note_local":  true,
	"createNote":         true,
	"device_create_note": true,
}

// Canonical maps note-creation aliases to ActionCreateNote and returns every
// other name unchanged.
func Canonical(name string) string {
	if noteAliases[name] {
		return ActionCreateNote
	}
	return name
}

// classification is the fixed action vocabulary. A name resolves to exactly
// one site or to nothing at all.
var classification = map[string]Site{
	"search_photos":      SiteLocal,
	"create_note":        SiteLocal,
	"create_note_local":  SiteLocal,
	"createNote":         SiteLocal,
	"device_create_note": SiteLocal,
	"play_music":         SiteLocal,
	"control_music":      SiteLocal,
	"read_messages":      SiteLocal,
	"read_last_text":     SiteLocal,
	"search_notes":       SiteRemote,
	"web_search":         SiteRemote,
	"complex_task":       SiteRemote,
	"search_shopping":    SiteRemote,
}

// Classify resolves a tool name to its execution site. ok is false for names
// outside the vocabulary; callers must answer with an unknown-tool result,
// never a silent drop.
func Classify(name string) (site Site, ok bool) {
	site, ok = classification[name]
	return site, ok
}

// StringParam returns params[key] as a string, or fallback when the key is
// missing or not a string. Malformed payloads degrade to safe defaults.
func StringParam(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// IntParam returns params[key] as an int, tolerating the float64 values that
// JSON decoding produces.
func IntParam(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}
