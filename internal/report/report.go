// Package report delivers execution results: the conversation-facing
// confirmation line and the durable execution log.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/voxrelay/voxctl/internal/toolcall"
	"github.com/voxrelay/voxctl/internal/ui"
)

// ExecutionLogger appends to the durable execution log.
type ExecutionLogger interface {
	LogExecution(ctx context.Context, sessionID, tool string, input map[string]any, output any, success bool, duration time.Duration) error
}

// Reporter updates the conversation state and the execution log. The
// conversation view shows only the most recent result; concurrent reports
// are last-writer-wins.
type Reporter struct {
	mu        sync.Mutex
	last      toolcall.Result
	lastTool  string
	printer   *ui.Printer
	logger    ExecutionLogger
	sessionID string
}

func New(printer *ui.Printer, logger ExecutionLogger, sessionID string) *Reporter {
	return &Reporter{printer: printer, logger: logger, sessionID: sessionID}
}

// Report surfaces one result. The printed line is the user-visible outcome;
// log append failures are swallowed and must never affect it.
func (r *Reporter) Report(ctx context.Context, call toolcall.ToolCall, res toolcall.Result, duration time.Duration) {
	r.mu.Lock()
	r.last = res
	r.lastTool = call.Name
	r.printer.Result(call.Name, res)
	r.mu.Unlock()

	if r.logger == nil {
		return
	}
	if err := r.logger.LogExecution(ctx, r.sessionID, call.Name, call.Params, res.Data, res.Success, duration); err != nil {
		log.Warn().Err(err).Str("tool", call.Name).Msg("execution log append failed")
	}
}

// Last returns the most recently reported result.
func (r *Reporter) Last() (tool string, res toolcall.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastTool, r.last
}
