package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNoteCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := notes.New("u1", "Groceries", "milk and eggs", []string{"shopping"})
	if err != nil {
		t.Fatalf("notes.New: %v", err)
	}
	if err := s.CreateNote(ctx, n); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	got, err := s.ListNotes(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Groceries" {
		t.Fatalf("ListNotes = %+v, want one Groceries note", got)
	}
	if len(got[0].Tags) != 1 || got[0].Tags[0] != "shopping" {
		t.Errorf("tags = %v, want [shopping]", got[0].Tags)
	}

	newTitle := "Shopping list"
	if err := s.UpdateNote(ctx, n.ID, store.NotePatch{Title: &newTitle}); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	got, _ = s.ListNotes(ctx, "u1", 10)
	if got[0].Title != newTitle {
		t.Errorf("title = %q, want %q", got[0].Title, newTitle)
	}
	if got[0].Content != "milk and eggs" {
		t.Errorf("content changed on partial update: %q", got[0].Content)
	}

	if err := s.DeleteNote(ctx, n.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if err := s.DeleteNote(ctx, n.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestSearchNotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, spec := range []struct{ title, content string }{
		{"Groceries", "milk and eggs"},
		{"Meeting", "discuss the milk budget"},
		{"Workout", "leg day"},
	} {
		n, _ := notes.New("u1", spec.title, spec.content, nil)
		if err := s.CreateNote(ctx, n); err != nil {
			t.Fatalf("CreateNote: %v", err)
		}
	}

	got, err := s.SearchNotes(ctx, "MILK", 10)
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2 (title and content matches)", len(got))
	}

	got, err = s.SearchNotes(ctx, "", 2)
	if err != nil {
		t.Fatalf("SearchNotes empty query: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("empty query returned %d, want limit 2", len(got))
	}
}

func TestSaveSettings_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SaveSettings(ctx, store.Settings{
		UserID: "u1", Name: "Ada", Email: "ada@example.com", Bio: "engineer",
	})
	if err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if first.Summary != "User Ada (ada@example.com). Bio: engineer. " {
		t.Errorf("summary = %q", first.Summary)
	}

	second, err := s.SaveSettings(ctx, store.Settings{
		UserID: "u1", Name: "Ada", Email: "ada@example.com",
		Bio: "researcher", FavoriteMusic: "jazz",
	})
	if err != nil {
		t.Fatalf("SaveSettings again: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("upsert changed created_at: %v vs %v", second.CreatedAt, first.CreatedAt)
	}

	got, err := s.GetSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if got.Bio != "researcher" {
		t.Errorf("bio = %q, want latest value", got.Bio)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("stored created_at %v differs from returned %v", got.CreatedAt, first.CreatedAt)
	}
	if got.Summary != "User Ada (ada@example.com). Bio: researcher. Likes jazz music. " {
		t.Errorf("summary = %q", got.Summary)
	}
}

func TestGetSettings_Missing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSettings(context.Background(), "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestContacts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.AddContact(ctx, store.Contact{
		UserID: "u1", Name: "Grace Hopper", Email: "grace@example.com", Nickname: "Amazing Grace",
	})
	if err != nil {
		t.Fatalf("AddContact: %v", err)
	}
	if c.ID == "" {
		t.Fatal("AddContact did not assign an ID")
	}

	found, err := s.FindContactByName(ctx, "u1", "grace")
	if err != nil {
		t.Fatalf("FindContactByName: %v", err)
	}
	if found.ID != c.ID {
		t.Errorf("found %q, want %q", found.ID, c.ID)
	}

	found, err = s.FindContactByName(ctx, "u1", "amazing")
	if err != nil {
		t.Fatalf("FindContactByName by nickname: %v", err)
	}
	if found.ID != c.ID {
		t.Errorf("nickname lookup found %q, want %q", found.ID, c.ID)
	}

	if _, err := s.FindContactByName(ctx, "u1", "alan"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown name err = %v, want ErrNotFound", err)
	}

	if err := s.DeleteContact(ctx, c.ID); err != nil {
		t.Fatalf("DeleteContact: %v", err)
	}
	contacts, _ := s.ListContacts(ctx, "u1")
	if len(contacts) != 0 {
		t.Errorf("contacts after delete = %d, want 0", len(contacts))
	}
}

func TestDrainCommands_AtMostOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.AddCommand(ctx, "play_music", map[string]any{"query": "jazz"}); err != nil {
		t.Fatalf("AddCommand: %v", err)
	}
	if _, err := s.AddCommand(ctx, "create_note", map[string]any{"title": "test"}); err != nil {
		t.Fatalf("AddCommand: %v", err)
	}

	drained, err := s.DrainCommands(ctx)
	if err != nil {
		t.Fatalf("DrainCommands: %v", err)
	}
	if len(drained) != 2 {
		t.Fatalf("first drain = %d commands, want 2", len(drained))
	}
	if drained[0].Action != "play_music" {
		t.Errorf("order = %q first, want oldest first", drained[0].Action)
	}
	if q, ok := drained[0].Params["query"]; !ok || q != "jazz" {
		t.Errorf("params = %v", drained[0].Params)
	}
	for _, cmd := range drained {
		if !cmd.Executed {
			t.Errorf("command %s not marked executed", cmd.ID)
		}
	}

	again, err := s.DrainCommands(ctx)
	if err != nil {
		t.Fatalf("second DrainCommands: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second drain = %d commands, want 0", len(again))
	}
}

func TestExecutionLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.LogExecution(ctx, store.Execution{
		SessionID:     "sess1",
		ToolName:      "web_search",
		Input:         map[string]any{"query": "weather"},
		Output:        "sunny",
		Success:       true,
		ExecutionTime: 120,
	})
	if err != nil {
		t.Fatalf("LogExecution: %v", err)
	}
	err = s.LogExecution(ctx, store.Execution{
		SessionID: "sess2", ToolName: "search_notes", Success: false,
	})
	if err != nil {
		t.Fatalf("LogExecution: %v", err)
	}

	hist, err := s.SessionHistory(ctx, "sess1")
	if err != nil {
		t.Fatalf("SessionHistory: %v", err)
	}
	if len(hist) != 1 || hist[0].ToolName != "web_search" {
		t.Fatalf("history = %+v", hist)
	}
	if hist[0].Output != "sunny" || !hist[0].Success {
		t.Errorf("entry = %+v", hist[0])
	}

	recent, err := s.RecentExecutions(ctx, 10)
	if err != nil {
		t.Fatalf("RecentExecutions: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("recent = %d entries, want 2", len(recent))
	}
}

func TestDrainEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.AddEvent(ctx, "note_created", map[string]any{"n": i}); err != nil {
			t.Fatalf("AddEvent: %v", err)
		}
	}

	events, err := s.DrainEvents(ctx, 2)
	if err != nil {
		t.Fatalf("DrainEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("drained %d events, want limit 2", len(events))
	}

	rest, err := s.DrainEvents(ctx, 10)
	if err != nil {
		t.Fatalf("second DrainEvents: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("second drain = %d, want the remaining 1", len(rest))
	}
}
