package toolcall

import (
	"encoding/json"
	"fmt"
)

// The voice SDK has shipped tool calls in a few payload shapes: the function
// details under "function" or inlined, and the arguments as a JSON-encoded
// string, an object, or under "parameters". The decoder maps every known
// shape into a ToolCall and errors loudly on anything else instead of
// skipping fields it does not recognize.

// WebhookMessage is the envelope POSTed to the tool-call webhook.
type WebhookMessage struct {
	Message struct {
		Type      string            `json:"type"`
		ToolCalls []json.RawMessage `json:"toolCalls"`
	} `json:"message"`
}

// rawCall covers every observed tool-call shape.
type rawCall struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Function *struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
	Arguments  json.RawMessage `json:"arguments"`
	Parameters map[string]any  `json:"parameters"`
}

// DecodeWebhook parses a webhook body. It returns the message type and, for
// "tool-calls" messages, one ToolCall or decode error per entry. Entries are
// isolated: a malformed call does not fail its batch.
func DecodeWebhook(body []byte) (msgType string, calls []ToolCall, errs []error, err error) {
	var msg WebhookMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", nil, nil, fmt.Errorf("decoding webhook body: %w", err)
	}
	if msg.Message.Type != "tool-calls" {
		return msg.Message.Type, nil, nil, nil
	}
	for i, raw := range msg.Message.ToolCalls {
		call, err := DecodeCall(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("tool call %d: %w", i, err))
			continue
		}
		calls = append(calls, call)
	}
	return msg.Message.Type, calls, errs, nil
}

// DecodeCall decodes a single tool-call entry.
func DecodeCall(raw json.RawMessage) (ToolCall, error) {
	var rc rawCall
	if err := json.Unmarshal(raw, &rc); err != nil {
		return ToolCall{}, fmt.Errorf("decoding tool call: %w", err)
	}

	name := rc.Name
	var args json.RawMessage
	if rc.Function != nil {
		if rc.Function.Name != "" {
			name = rc.Function.Name
		}
		args = rc.Function.Arguments
	}
	if args == nil {
		args = rc.Arguments
	}
	if name == "" {
		return ToolCall{}, fmt.Errorf("tool call has no name")
	}

	params, err := decodeArguments(args)
	if err != nil {
		return ToolCall{}, err
	}
	if params == nil {
		params = rc.Parameters
	}
	if params == nil {
		params = map[string]any{}
	}

	return ToolCall{Name: name, Params: params, CallID: rc.ID}, nil
}

// decodeArguments handles arguments delivered as an object or as a
// JSON-encoded string. nil input decodes to nil so callers can fall back to
// the "parameters" field.
func decodeArguments(args json.RawMessage) (map[string]any, error) {
	if len(args) == 0 || string(args) == "null" {
		return nil, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(args, &obj); err == nil {
		return obj, nil
	}

	var s string
	if err := json.Unmarshal(args, &s); err != nil {
		return nil, fmt.Errorf("arguments are neither object nor string: %s", args)
	}
	if s == "" {
		return map[string]any{}, nil
	}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, fmt.Errorf("decoding arguments string: %w", err)
	}
	return obj, nil
}
