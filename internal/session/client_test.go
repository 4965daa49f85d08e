package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxrelay/voxctl/internal/store"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand(map[string]any{
		"id":        "cmd1",
		"action":    "play_music",
		"params":    map[string]any{"query": "jazz"},
		"timestamp": float64(1700000000000),
	})
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	if cmd.Action != "play_music" || cmd.ID != "cmd1" {
		t.Errorf("cmd = %+v", cmd)
	}
	if cmd.Params["query"] != "jazz" {
		t.Errorf("params = %v", cmd.Params)
	}
	if cmd.Timestamp != 1700000000000 {
		t.Errorf("timestamp = %d", cmd.Timestamp)
	}
}

func TestDecodeCommand_MissingAction(t *testing.T) {
	if _, err := DecodeCommand(map[string]any{"id": "x"}); err == nil {
		t.Fatal("expected error for frame without action")
	}
}

func TestDecodeCommand_NilParams(t *testing.T) {
	cmd, err := DecodeCommand(map[string]any{"action": "read_messages"})
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	if cmd.Params == nil {
		t.Fatal("params not defaulted")
	}
}

func TestClient_ExecutesCommandAndReportsResult(t *testing.T) {
	upgrader := websocket.Upgrader{}
	gotResult := make(chan resultFrame, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		err = conn.WriteJSON(frame{
			Event: "command",
			Data: map[string]any{
				"id":     "cmd1",
				"action": "play_music",
				"params": map[string]any{"query": "jazz"},
			},
			Timestamp: time.Now().UnixMilli(),
		})
		if err != nil {
			t.Errorf("write: %v", err)
			return
		}

		var rf resultFrame
		if err := conn.ReadJSON(&rf); err != nil {
			t.Errorf("reading result frame: %v", err)
			return
		}
		gotResult <- rf
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := New("ws"+strings.TrimPrefix(srv.URL, "http"), func(ctx context.Context, cmd store.Command) toolcall.Result {
		return toolcall.Result{Success: true, Message: "Playing " + cmd.Params["query"].(string)}
	})
	go client.Run(ctx)

	select {
	case rf := <-gotResult:
		if rf.CallID != "cmd1" {
			t.Errorf("callId = %q", rf.CallID)
		}
		if !rf.Result.Success || rf.Result.Message != "Playing jazz" {
			t.Errorf("result = %+v", rf.Result)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for result frame")
	}
}
