package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

// ErrUnavailable wraps transport-level failures reaching the backend.
var ErrUnavailable = errors.New("backend unavailable")

// Client talks to the voxctl backend: document-store functions over the
// query/mutation endpoints and tool forwarding over the webhook. Every
// request is a single attempt; callers decide whether a failure matters.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

// New builds a client for baseURL. secret, when non-empty, is sent as
// x-vapi-secret on forwarded tool calls.
func New(baseURL, secret string) *Client {
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type functionRequest struct {
	Path string         `json:"path"`
	Args map[string]any `json:"args"`
}

type functionResponse struct {
	Value json.RawMessage `json:"value"`
	Error string          `json:"error,omitempty"`
}

func (c *Client) callFunction(ctx context.Context, endpoint, path string, args map[string]any) (json.RawMessage, error) {
	if args == nil {
		args = map[string]any{}
	}
	body, err := json.Marshal(functionRequest{Path: path, Args: args})
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	var fr functionResponse
	if err := json.Unmarshal(data, &fr); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", path, err)
	}
	if fr.Error != "" {
		return nil, fmt.Errorf("%s: %s", path, fr.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	return fr.Value, nil
}

// Query invokes a read-only backend function and decodes its value into out.
// Pass a nil out to discard the value.
func (c *Client) Query(ctx context.Context, path string, args map[string]any, out any) error {
	value, err := c.callFunction(ctx, "/api/query", path, args)
	if err != nil {
		return err
	}
	if out == nil || len(value) == 0 {
		return nil
	}
	if err := json.Unmarshal(value, out); err != nil {
		return fmt.Errorf("decoding %s value: %w", path, err)
	}
	return nil
}

// Mutation invokes a backend function that writes.
func (c *Client) Mutation(ctx context.Context, path string, args map[string]any, out any) error {
	value, err := c.callFunction(ctx, "/api/mutation", path, args)
	if err != nil {
		return err
	}
	if out == nil || len(value) == 0 {
		return nil
	}
	if err := json.Unmarshal(value, out); err != nil {
		return fmt.Errorf("decoding %s value: %w", path, err)
	}
	return nil
}

type webhookEnvelope struct {
	Message webhookMessage `json:"message"`
}

type webhookMessage struct {
	Type      string        `json:"type"`
	ToolCalls []webhookCall `json:"toolCalls"`
}

type webhookCall struct {
	ID       string          `json:"id"`
	Function webhookFunction `json:"function"`
}

type webhookFunction struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type webhookResponse struct {
	Results []webhookResult `json:"results"`
}

type webhookResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Forward sends one tool call to the backend webhook and returns the
// matching result. The call is made exactly once.
func (c *Client) Forward(ctx context.Context, call toolcall.ToolCall) (toolcall.Result, error) {
	callID := call.CallID
	if callID == "" {
		callID = fmt.Sprintf("relay-%d", time.Now().UnixNano())
	}
	envelope := webhookEnvelope{
		Message: webhookMessage{
			Type: "tool-calls",
			ToolCalls: []webhookCall{{
				ID: callID,
				Function: webhookFunction{
					Name:      call.Name,
					Arguments: call.Params,
				},
			}},
		},
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return toolcall.Result{}, fmt.Errorf("encoding tool call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/vapi/toolHandler", bytes.NewReader(body))
	if err != nil {
		return toolcall.Result{}, fmt.Errorf("building tool call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("x-vapi-secret", c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return toolcall.Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return toolcall.Result{}, fmt.Errorf("tool handler: unexpected status %d", resp.StatusCode)
	}

	var wr webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return toolcall.Result{}, fmt.Errorf("decoding tool handler response: %w", err)
	}
	for _, r := range wr.Results {
		if r.ToolCallID != callID {
			continue
		}
		if r.Error != "" {
			return toolcall.Result{Success: false, Message: r.Error}, nil
		}
		return toolcall.Result{Success: true, Message: r.Result}, nil
	}
	return toolcall.Result{}, fmt.Errorf("tool handler: no result for call %s", callID)
}

// PersistNote stores a device-created note on the backend. The note keeps
// its device-assigned ID so replays stay idempotent.
func (c *Client) PersistNote(ctx context.Context, n notes.Note) error {
	return c.Mutation(ctx, "notes:create", map[string]any{
		"id":      n.ID,
		"userId":  n.UserID,
		"title":   n.Title,
		"content": n.Content,
		"tags":    n.Tags,
	}, nil)
}

// LogExecution records a tool execution via the backend, best effort.
// Failures are reported to the caller, who typically ignores them.
func (c *Client) LogExecution(ctx context.Context, sessionID, tool string, input map[string]any, output any, success bool, duration time.Duration) error {
	return c.Mutation(ctx, "tools:logExecution", map[string]any{
		"sessionId":     sessionID,
		"toolName":      tool,
		"input":         input,
		"output":        output,
		"success":       success,
		"executionTime": duration.Milliseconds(),
	}, nil)
}
