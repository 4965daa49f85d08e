package cmd

import "testing"

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"query=miles davis", "count=3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params["query"] != "miles davis" {
		t.Errorf("query = %v", params["query"])
	}
	if params["count"] != "3" {
		t.Errorf("count = %v", params["count"])
	}
}

func TestParseParams_ValueWithEquals(t *testing.T) {
	params, err := parseParams([]string{"content=a=b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params["content"] != "a=b" {
		t.Errorf("content = %v", params["content"])
	}
}

func TestParseParams_Invalid(t *testing.T) {
	for _, pair := range []string{"noequals", "=value"} {
		if _, err := parseParams([]string{pair}); err == nil {
			t.Errorf("expected error for %q", pair)
		}
	}
}

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8787", "ws://localhost:8787/ws"},
		{"https://vox.example.com/", "wss://vox.example.com/ws"},
	}
	for _, tt := range tests {
		if got := websocketURL(tt.base); got != tt.want {
			t.Errorf("websocketURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}
