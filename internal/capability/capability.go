// Package capability holds the on-device tool implementations behind the
// dispatch router: photo search, note creation, music control and message
// reading. Capabilities never return errors across the dispatch boundary;
// failures are expressed as unsuccessful results with a spoken message.
package capability

import (
	"context"

	"github.com/voxrelay/voxctl/internal/toolcall"
)

// Capability executes one local action.
type Capability interface {
	Name() string
	Execute(ctx context.Context, params map[string]any) toolcall.Result
}

// Registry is the fixed mapping from canonical action names to their
// capability. It is populated once at startup and read-only afterwards.
type Registry struct {
	caps map[string]Capability
}

// NewRegistry indexes the given capabilities by name.
func NewRegistry(caps ...Capability) *Registry {
	r := &Registry{caps: make(map[string]Capability, len(caps))}
	for _, c := range caps {
		r.caps[c.Name()] = c
	}
	return r
}

// Lookup resolves a canonical action name. Aliases (control_music,
// read_last_text, the create_note variants) map onto their primary action.
func (r *Registry) Lookup(name string) (Capability, bool) {
	name = toolcall.Canonical(name)
	switch name {
	case "control_music":
		name = "play_music"
	case "read_last_text":
		name = "read_messages"
	}
	c, ok := r.caps[name]
	return c, ok
}
