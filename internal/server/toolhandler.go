package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voxrelay/voxctl/internal/metrics"
	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/search"
	"github.com/voxrelay/voxctl/internal/store"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

type toolResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
}

// handleToolCalls is the voice SDK webhook. Calls in a batch are isolated:
// one bad call never fails its siblings, and every call gets a result or an
// error keyed by its id.
func (s *Server) handleToolCalls(w http.ResponseWriter, r *http.Request) {
	if s.secret != "" && r.Header.Get("x-vapi-secret") != s.secret {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body"})
		return
	}

	msgType, calls, decodeErrs, err := toolcall.DecodeWebhook(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if msgType != "tool-calls" {
		writeJSON(w, http.StatusOK, map[string]string{"message": "OK"})
		return
	}

	results := make([]toolResult, 0, len(calls)+len(decodeErrs))
	for _, decodeErr := range decodeErrs {
		log.Warn().Err(decodeErr).Msg("undecodable tool call in batch")
		results = append(results, toolResult{Error: decodeErr.Error()})
	}
	for _, call := range calls {
		results = append(results, s.executeRemote(r.Context(), call))
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// executeRemote runs one backend-side tool call. Execution is always logged
// best effort; log failures never reach the caller.
func (s *Server) executeRemote(ctx context.Context, call toolcall.ToolCall) toolResult {
	start := time.Now()
	res := s.runRemoteTool(ctx, call)

	success := res.Error == ""
	metrics.ToolExecutions.WithLabelValues(call.Name, "remote", metrics.Status(success)).Inc()

	if err := s.store.LogExecution(ctx, store.Execution{
		SessionID:     "default",
		ToolName:      call.Name,
		Input:         call.Params,
		Output:        res,
		Success:       success,
		ExecutionTime: time.Since(start).Milliseconds(),
	}); err != nil {
		log.Warn().Err(err).Str("tool", call.Name).Msg("execution log append failed")
	}

	return res
}

func (s *Server) runRemoteTool(ctx context.Context, call toolcall.ToolCall) toolResult {
	params := call.Params

	switch toolcall.Canonical(call.Name) {
	case toolcall.ActionCreateNote:
		title := toolcall.StringParam(params, "title", notes.DefaultTitle)
		content := toolcall.StringParam(params, "content", "")
		n, err := notes.New(toolcall.StringParam(params, "userId", ""), title, content, nil)
		if err != nil {
			return toolResult{ToolCallID: call.CallID, Error: err.Error()}
		}
		if err := s.store.CreateNote(ctx, n); err != nil {
			return toolResult{ToolCallID: call.CallID, Error: err.Error()}
		}
		return toolResult{
			ToolCallID: call.CallID,
			Result:     fmt.Sprintf("Note created successfully with content: %q", content),
		}

	case "search_notes":
		query := toolcall.StringParam(params, "query", "")
		found, err := s.store.SearchNotes(ctx, query, 10)
		if err != nil {
			return toolResult{ToolCallID: call.CallID, Error: err.Error()}
		}
		if len(found) == 0 {
			return toolResult{ToolCallID: call.CallID, Result: "No notes found matching your search."}
		}
		lines := make([]string, 0, len(found))
		for _, n := range found {
			lines = append(lines, fmt.Sprintf("- %s: %s", n.Title, n.Content))
		}
		return toolResult{
			ToolCallID: call.CallID,
			Result:     fmt.Sprintf("Found %d notes:\n%s", len(found), strings.Join(lines, "\n")),
		}

	case "search_photos", "play_music", "control_music", "read_messages", "read_last_text":
		log.Error().Str("tool", call.Name).Msg("local tool routed to backend")
		return toolResult{ToolCallID: call.CallID, Error: "This tool must be handled locally on the device."}

	case "web_search":
		query := toolcall.StringParam(params, "query", "")
		if s.web == nil {
			return toolResult{ToolCallID: call.CallID, Result: unableToSearch(query)}
		}
		summary, err := s.web.Search(ctx, query)
		if err != nil {
			log.Warn().Err(err).Msg("web search failed")
			return toolResult{ToolCallID: call.CallID, Result: unableToSearch(query)}
		}
		return toolResult{ToolCallID: call.CallID, Result: summary}

	case "complex_task":
		request := toolcall.StringParam(params, "request", "")
		if s.tasks == nil || !s.tasks.Available() {
			return toolResult{
				ToolCallID: call.CallID,
				Result:     fmt.Sprintf("Unable to process complex task: %s", request),
			}
		}
		answer, err := s.tasks.Run(ctx, request)
		if err != nil {
			log.Warn().Err(err).Msg("complex task failed")
			return toolResult{
				ToolCallID: call.CallID,
				Result:     fmt.Sprintf("Unable to process complex task: %s", request),
			}
		}
		return toolResult{ToolCallID: call.CallID, Result: answer}

	case "search_shopping":
		query := toolcall.StringParam(params, "query", "")
		count := toolcall.IntParam(params, "count", 10)
		if s.shop == nil {
			return toolResult{
				ToolCallID: call.CallID,
				Result:     "Shopping search unavailable - API key not configured",
			}
		}
		summary, err := s.shop.Shop(ctx, query, count)
		if errors.Is(err, search.ErrNoAPIKey) {
			return toolResult{
				ToolCallID: call.CallID,
				Result:     "Shopping search unavailable - API key not configured",
			}
		}
		if err != nil {
			log.Warn().Err(err).Msg("shopping search failed")
			return toolResult{
				ToolCallID: call.CallID,
				Result:     fmt.Sprintf("Unable to search for products: %v", err),
			}
		}
		return toolResult{ToolCallID: call.CallID, Result: summary}

	default:
		return toolResult{ToolCallID: call.CallID, Error: fmt.Sprintf("Unknown tool: %s", call.Name)}
	}
}

func unableToSearch(query string) string {
	return fmt.Sprintf("Unable to search at this time. Would need to search for: %s", query)
}
