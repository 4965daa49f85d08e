package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voxrelay/voxctl/internal/toolcall"
)

func TestQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/query" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req functionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Path != "notes:list" {
			t.Errorf("function path = %q", req.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"value": []map[string]any{{"title": "hi"}}})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	var out []map[string]any
	if err := c.Query(context.Background(), "notes:list", map[string]any{"userId": "u1"}, &out); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(out) != 1 || out[0]["title"] != "hi" {
		t.Fatalf("out = %v", out)
	}
}

func TestMutation_FunctionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": "note not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	err := c.Mutation(context.Background(), "notes:update", map[string]any{"id": "x"}, nil)
	if err == nil || err.Error() != "notes:update: note not found" {
		t.Fatalf("err = %v", err)
	}
}

func TestForward(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vapi/toolHandler" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("x-vapi-secret"); got != "hush" {
			t.Errorf("secret header = %q", got)
		}
		var env webhookEnvelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			t.Fatalf("decoding envelope: %v", err)
		}
		if env.Message.Type != "tool-calls" || len(env.Message.ToolCalls) != 1 {
			t.Fatalf("envelope = %+v", env)
		}
		call := env.Message.ToolCalls[0]
		if call.Function.Name != "web_search" {
			t.Errorf("tool = %q", call.Function.Name)
		}
		json.NewEncoder(w).Encode(webhookResponse{Results: []webhookResult{
			{ToolCallID: call.ID, Result: "three links"},
		}})
	}))
	defer srv.Close()

	c := New(srv.URL, "hush")
	res, err := c.Forward(context.Background(), toolcall.ToolCall{
		Name:   "web_search",
		Params: map[string]any{"query": "weather"},
		CallID: "call-1",
	})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if !res.Success || res.Message != "three links" {
		t.Fatalf("result = %+v", res)
	}
}

func TestForward_ErrorResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(webhookResponse{Results: []webhookResult{
			{ToolCallID: "call-1", Error: "Unknown tool: frobnicate"},
		}})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	res, err := c.Forward(context.Background(), toolcall.ToolCall{Name: "frobnicate", CallID: "call-1"})
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if res.Success || res.Message != "Unknown tool: frobnicate" {
		t.Fatalf("result = %+v", res)
	}
}

func TestForward_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", "")
	_, err := c.Forward(context.Background(), toolcall.ToolCall{Name: "web_search", CallID: "c"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
