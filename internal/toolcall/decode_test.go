package toolcall

import (
	"encoding/json"
	"testing"
)

func TestDecodeWebhook_FunctionShape(t *testing.T) {
	body := []byte(`{"message":{"type":"tool-calls","toolCalls":[
		{"id":"c1","function":{"name":"search_notes","arguments":"{\"query\":\"milk\"}"}}
	]}}`)

	msgType, calls, errs, err := DecodeWebhook(body)
	if err != nil {
		t.Fatalf("DecodeWebhook: %v", err)
	}
	if msgType != "tool-calls" {
		t.Fatalf("msgType = %q", msgType)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected per-call errors: %v", errs)
	}
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	c := calls[0]
	if c.Name != "search_notes" || c.CallID != "c1" {
		t.Errorf("call = %+v", c)
	}
	if c.Params["query"] != "milk" {
		t.Errorf("params = %v", c.Params)
	}
}

func TestDecodeCall_Shapes(t *testing.T) {
	tests := []struct {
		desc    string
		raw     string
		name    string
		wantKey string
		wantVal any
	}{
		{
			desc:    "arguments as object under function",
			raw:     `{"id":"c2","function":{"name":"create_note","arguments":{"title":"T"}}}`,
			name:    "create_note",
			wantKey: "title", wantVal: "T",
		},
		{
			desc:    "top-level name and arguments",
			raw:     `{"id":"c3","name":"play_music","arguments":{"action":"pause"}}`,
			name:    "play_music",
			wantKey: "action", wantVal: "pause",
		},
		{
			desc:    "parameters field",
			raw:     `{"id":"c4","name":"read_messages","parameters":{"count":2}}`,
			name:    "read_messages",
			wantKey: "count", wantVal: 2.0,
		},
	}

	for _, tt := range tests {
		call, err := DecodeCall(json.RawMessage(tt.raw))
		if err != nil {
			t.Errorf("%s: %v", tt.desc, err)
			continue
		}
		if call.Name != tt.name {
			t.Errorf("%s: name = %q, want %q", tt.desc, call.Name, tt.name)
		}
		if call.Params[tt.wantKey] != tt.wantVal {
			t.Errorf("%s: params[%s] = %v, want %v", tt.desc, tt.wantKey, call.Params[tt.wantKey], tt.wantVal)
		}
	}
}

func TestDecodeCall_MissingName(t *testing.T) {
	_, err := DecodeCall(json.RawMessage(`{"id":"c5","arguments":{}}`))
	if err == nil {
		t.Fatal("expected error for nameless call")
	}
}

func TestDecodeCall_NoArguments(t *testing.T) {
	call, err := DecodeCall(json.RawMessage(`{"id":"c6","name":"search_photos"}`))
	if err != nil {
		t.Fatalf("DecodeCall: %v", err)
	}
	if call.Params == nil {
		t.Fatal("params must default to an empty map")
	}
}

func TestDecodeWebhook_IsolatesBadCalls(t *testing.T) {
	body := []byte(`{"message":{"type":"tool-calls","toolCalls":[
		{"id":"bad","arguments":{}},
		{"id":"good","function":{"name":"web_search","arguments":"{\"query\":\"weather\"}"}}
	]}}`)

	_, calls, errs, err := DecodeWebhook(body)
	if err != nil {
		t.Fatalf("DecodeWebhook: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if len(calls) != 1 || calls[0].CallID != "good" {
		t.Fatalf("good call not decoded: %+v", calls)
	}
}

func TestDecodeWebhook_OtherMessageType(t *testing.T) {
	msgType, calls, errs, err := DecodeWebhook([]byte(`{"message":{"type":"status-update"}}`))
	if err != nil {
		t.Fatalf("DecodeWebhook: %v", err)
	}
	if msgType != "status-update" || calls != nil || errs != nil {
		t.Fatalf("msgType=%q calls=%v errs=%v", msgType, calls, errs)
	}
}
