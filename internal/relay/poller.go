// Package relay is the polling fallback path: queued commands and note
// updates are fetched on fixed intervals, so the agent converges even when
// the live channel is down.
package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voxrelay/voxctl/internal/store"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

// Backend is the subset of the backend client the relay needs.
type Backend interface {
	Query(ctx context.Context, path string, args map[string]any, out any) error
	Mutation(ctx context.Context, path string, args map[string]any, out any) error
}

// Reporter delivers an execution result.
type Reporter interface {
	Report(ctx context.Context, call toolcall.ToolCall, res toolcall.Result, duration time.Duration)
}

// Dispatcher executes one tool call.
type Dispatcher interface {
	Dispatch(ctx context.Context, call toolcall.ToolCall) toolcall.Result
}

// Deduper records commands already executed in this session. The drain
// itself is at-most-once per record, but the same command can arrive twice
// when the live channel delivered it before the poll did; the action plus
// queue timestamp identifies the duplicate.
type Deduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]bool)}
}

// Claim marks the command as executed and reports whether this caller won.
func (d *Deduper) Claim(action string, timestamp int64) bool {
	key := fmt.Sprintf("%s@%d", action, timestamp)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}

// Poller drains the backend command queue on a fixed interval and runs each
// drained command through the dispatcher.
type Poller struct {
	backend    Backend
	dispatcher Dispatcher
	reporter   Reporter
	dedupe     *Deduper
	interval   time.Duration
}

func NewPoller(backend Backend, dispatcher Dispatcher, reporter Reporter, dedupe *Deduper, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	return &Poller{
		backend:    backend,
		dispatcher: dispatcher,
		reporter:   reporter,
		dedupe:     dedupe,
		interval:   interval,
	}
}

// Run polls until the context ends. A failed poll is logged and skipped;
// the next tick tries again. There are no retries within a tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll performs one drain-and-execute cycle.
func (p *Poller) Poll(ctx context.Context) {
	var cmds []store.Command
	if err := p.backend.Mutation(ctx, "commands:getUnexecutedCommands", nil, &cmds); err != nil {
		log.Warn().Err(err).Msg("command poll failed")
		return
	}

	for _, cmd := range cmds {
		if p.dedupe != nil && !p.dedupe.Claim(cmd.Action, cmd.Timestamp) {
			log.Debug().Str("action", cmd.Action).Msg("command already executed via live channel")
			continue
		}
		call := toolcall.ToolCall{Name: cmd.Action, Params: cmd.Params}
		start := time.Now()
		res := p.dispatcher.Dispatch(ctx, call)
		p.reporter.Report(ctx, call, res, time.Since(start))
	}
}
