package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/store"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

type fakeBackend struct {
	mu       sync.Mutex
	commands [][]store.Command
	notes    []notes.Note
	err      error
}

func (f *fakeBackend) Mutation(ctx context.Context, path string, args map[string]any, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if path != "commands:getUnexecutedCommands" {
		return errors.New("unexpected path " + path)
	}
	var batch []store.Command
	if len(f.commands) > 0 {
		batch = f.commands[0]
		f.commands = f.commands[1:]
	}
	return assign(out, batch)
}

func (f *fakeBackend) Query(ctx context.Context, path string, args map[string]any, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return assign(out, f.notes)
}

func assign(out, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

type recordingDispatcher struct {
	mu    sync.Mutex
	calls []toolcall.ToolCall
}

func (r *recordingDispatcher) Dispatch(ctx context.Context, call toolcall.ToolCall) toolcall.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	return toolcall.Result{Success: true, Message: "done"}
}

type recordingReporter struct {
	mu      sync.Mutex
	results []toolcall.Result
}

func (r *recordingReporter) Report(ctx context.Context, call toolcall.ToolCall, res toolcall.Result, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func TestPoller_DispatchesDrainedCommands(t *testing.T) {
	backend := &fakeBackend{commands: [][]store.Command{{
		{ID: "1", Action: "play_music", Params: map[string]any{"query": "jazz"}, Timestamp: 100},
		{ID: "2", Action: "create_note", Params: map[string]any{"title": "x"}, Timestamp: 101},
	}}}
	disp := &recordingDispatcher{}
	rep := &recordingReporter{}
	p := NewPoller(backend, disp, rep, NewDeduper(), time.Second)

	p.Poll(context.Background())

	if len(disp.calls) != 2 {
		t.Fatalf("dispatched %d calls, want 2", len(disp.calls))
	}
	if disp.calls[0].Name != "play_music" || disp.calls[0].CallID != "" {
		t.Errorf("call = %+v, want polled command without call id", disp.calls[0])
	}
	if len(rep.results) != 2 {
		t.Errorf("reported %d results, want 2", len(rep.results))
	}
}

func TestPoller_DedupeSkipsSeenCommands(t *testing.T) {
	dedupe := NewDeduper()
	if !dedupe.Claim("play_music", 100) {
		t.Fatal("first claim lost")
	}

	backend := &fakeBackend{commands: [][]store.Command{{
		{ID: "1", Action: "play_music", Params: nil, Timestamp: 100},
		{ID: "2", Action: "play_music", Params: nil, Timestamp: 200},
	}}}
	disp := &recordingDispatcher{}
	p := NewPoller(backend, disp, &recordingReporter{}, dedupe, time.Second)

	p.Poll(context.Background())

	if len(disp.calls) != 1 {
		t.Fatalf("dispatched %d calls, want only the unseen one", len(disp.calls))
	}
	if disp.calls[0].Name != "play_music" {
		t.Errorf("call = %+v", disp.calls[0])
	}
}

func TestPoller_PollFailureSkipped(t *testing.T) {
	backend := &fakeBackend{err: errors.New("down")}
	disp := &recordingDispatcher{}
	p := NewPoller(backend, disp, &recordingReporter{}, NewDeduper(), time.Second)

	p.Poll(context.Background())

	if len(disp.calls) != 0 {
		t.Fatalf("dispatched %d calls on a failed poll", len(disp.calls))
	}
}

func TestNotesSync(t *testing.T) {
	backend := &fakeBackend{notes: []notes.Note{{ID: "n1", Title: "Groceries"}}}
	var got []notes.Note
	s := NewNotesSync(backend, "u1", time.Second, func(list []notes.Note) { got = list })

	s.Sync(context.Background())

	if len(got) != 1 || got[0].ID != "n1" {
		t.Fatalf("synced notes = %+v", got)
	}
}

func TestNotesSync_FailureKeepsSnapshot(t *testing.T) {
	backend := &fakeBackend{err: errors.New("down")}
	called := false
	s := NewNotesSync(backend, "u1", time.Second, func([]notes.Note) { called = true })

	s.Sync(context.Background())

	if called {
		t.Fatal("callback ran on a failed sync")
	}
}
