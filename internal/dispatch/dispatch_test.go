package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voxrelay/voxctl/internal/capability"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

type fakeForwarder struct {
	calls  []toolcall.ToolCall
	result toolcall.Result
	err    error
}

func (f *fakeForwarder) Forward(ctx context.Context, call toolcall.ToolCall) (toolcall.Result, error) {
	f.calls = append(f.calls, call)
	return f.result, f.err
}

func newDispatcher(fwd *fakeForwarder) *Dispatcher {
	reg := capability.NewRegistry(
		capability.NewMusic(capability.NewLocalPlayer([]capability.Track{
			{Title: "So What", Artist: "Miles Davis"},
		})),
	)
	return New(reg, fwd)
}

func TestDispatch_LocalNeverForwards(t *testing.T) {
	fwd := &fakeForwarder{}
	d := newDispatcher(fwd)

	res := d.Dispatch(context.Background(), toolcall.ToolCall{
		Name:   "play_music",
		Params: map[string]any{"query": "so what"},
	})
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if len(fwd.calls) != 0 {
		t.Fatalf("local call reached the backend: %v", fwd.calls)
	}
}

func TestDispatch_RemoteForwards(t *testing.T) {
	fwd := &fakeForwarder{result: toolcall.Result{Success: true, Message: "three links"}}
	d := newDispatcher(fwd)

	res := d.Dispatch(context.Background(), toolcall.ToolCall{
		Name:   "web_search",
		Params: map[string]any{"query": "weather"},
		CallID: "c1",
	})
	if !res.Success || res.Message != "three links" {
		t.Fatalf("result = %+v", res)
	}
	if len(fwd.calls) != 1 || fwd.calls[0].CallID != "c1" {
		t.Fatalf("forwarded = %v", fwd.calls)
	}
}

func TestDispatch_RemoteFailureBecomesResult(t *testing.T) {
	fwd := &fakeForwarder{err: errors.New("connection refused")}
	d := newDispatcher(fwd)

	res := d.Dispatch(context.Background(), toolcall.ToolCall{Name: "search_notes"})
	if res.Success {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Message, "connection refused") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestDispatch_UnknownTool(t *testing.T) {
	fwd := &fakeForwarder{}
	d := newDispatcher(fwd)

	res := d.Dispatch(context.Background(), toolcall.ToolCall{Name: "frobnicate"})
	if res.Success {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Message, "Unknown tool: frobnicate") {
		t.Errorf("message = %q", res.Message)
	}
	if len(fwd.calls) != 0 {
		t.Errorf("unknown tool was forwarded")
	}
}

func TestDispatch_LocalWithoutCapability(t *testing.T) {
	d := New(capability.NewRegistry(), &fakeForwarder{})
	res := d.Dispatch(context.Background(), toolcall.ToolCall{Name: "search_photos"})
	if res.Success {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(res.Message, "search_photos") {
		t.Errorf("message = %q", res.Message)
	}
}
