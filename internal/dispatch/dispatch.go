// Package dispatch routes tool calls to their execution site: the local
// capability registry or the backend webhook. Every call produces exactly
// one result; errors never cross the dispatch boundary.
package dispatch

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/voxrelay/voxctl/internal/capability"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

// Forwarder sends a call to the backend tool handler.
type Forwarder interface {
	Forward(ctx context.Context, call toolcall.ToolCall) (toolcall.Result, error)
}

// Dispatcher is the device-side router.
type Dispatcher struct {
	registry  *capability.Registry
	forwarder Forwarder
}

func New(registry *capability.Registry, forwarder Forwarder) *Dispatcher {
	return &Dispatcher{registry: registry, forwarder: forwarder}
}

// Dispatch classifies and executes one tool call. Local calls never touch
// the network; remote calls are forwarded once, with transport failures
// converted to failure results.
func (d *Dispatcher) Dispatch(ctx context.Context, call toolcall.ToolCall) toolcall.Result {
	site, ok := toolcall.Classify(call.Name)
	if !ok {
		log.Warn().Str("tool", call.Name).Msg("unknown tool name")
		return toolcall.ErrUnknownTool(call.Name)
	}

	switch site {
	case toolcall.SiteLocal:
		cap, ok := d.registry.Lookup(call.Name)
		if !ok {
			log.Error().Str("tool", call.Name).Msg("local tool without capability")
			return toolcall.Failure("Capability not available: %s", call.Name)
		}
		log.Debug().Str("tool", call.Name).Msg("executing local capability")
		return cap.Execute(ctx, call.Params)

	default:
		log.Debug().Str("tool", call.Name).Msg("forwarding to backend")
		result, err := d.forwarder.Forward(ctx, call)
		if err != nil {
			log.Warn().Err(err).Str("tool", call.Name).Msg("forward failed")
			return toolcall.Failure("Error executing %s: %v", call.Name, err)
		}
		return result
	}
}
