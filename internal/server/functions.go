package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/voxrelay/voxctl/internal/metrics"
	"github.com/voxrelay/voxctl/internal/notes"
	"github.com/voxrelay/voxctl/internal/store"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

// The query/mutation endpoints expose the document store as named
// functions: the body is {path, args}, the response {value} or {error}.

type functionRequest struct {
	Path string         `json:"path"`
	Args map[string]any `json:"args"`
}

type functionHandler func(ctx context.Context, s *Server, args map[string]any) (any, error)

var queryFunctions = map[string]functionHandler{
	"notes:list":                 fnNotesList,
	"notes:search":               fnNotesSearch,
	"settings:get":               fnSettingsGet,
	"settings:getContacts":       fnContactsList,
	"settings:findContactByName": fnContactFind,
	"tools:getSessionHistory":    fnSessionHistory,
	"tools:getRecentExecutions":  fnRecentExecutions,
}

var mutationFunctions = map[string]functionHandler{
	"commands:addCommand":            fnAddCommand,
	"commands:getUnexecutedCommands": fnDrainCommands,
	"notes:create":                   fnNotesCreate,
	"notes:update":                   fnNotesUpdate,
	"notes:remove":                   fnNotesRemove,
	"settings:save":                  fnSettingsSave,
	"settings:addContact":            fnContactAdd,
	"settings:updateContact":         fnContactUpdate,
	"settings:deleteContact":         fnContactDelete,
	"tools:logExecution":             fnLogExecution,
	"realtime:notifyClients":         fnNotifyClients,
	"realtime:getUnprocessedEvents":  fnDrainEvents,
}

func (s *Server) handleFunction(table map[string]functionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req functionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
			return
		}
		fn, ok := table[req.Path]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown function: %s", req.Path)})
			return
		}
		if req.Args == nil {
			req.Args = map[string]any{}
		}

		value, err := fn(r.Context(), s, req.Args)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, store.ErrNotFound) {
				status = http.StatusNotFound
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"value": value})
	}
}

// --- Commands ---

func fnAddCommand(ctx context.Context, s *Server, args map[string]any) (any, error) {
	action := toolcall.StringParam(args, "action", "")
	if action == "" {
		return nil, fmt.Errorf("%w: action required", store.ErrValidation)
	}
	params, _ := args["params"].(map[string]any)
	cmd, err := s.store.AddCommand(ctx, action, params)
	if err != nil {
		return nil, err
	}
	metrics.CommandsQueued.Inc()
	s.hub.Broadcast("command", map[string]any{
		"id": cmd.ID, "action": cmd.Action, "params": cmd.Params, "timestamp": cmd.Timestamp,
	})
	return cmd, nil
}

func fnDrainCommands(ctx context.Context, s *Server, _ map[string]any) (any, error) {
	cmds, err := s.store.DrainCommands(ctx)
	if err != nil {
		return nil, err
	}
	if cmds == nil {
		cmds = []store.Command{}
	}
	return cmds, nil
}

// --- Notes ---

func fnNotesCreate(ctx context.Context, s *Server, args map[string]any) (any, error) {
	n, err := notes.New(
		toolcall.StringParam(args, "userId", ""),
		toolcall.StringParam(args, "title", notes.DefaultTitle),
		toolcall.StringParam(args, "content", ""),
		argStringSlice(args, "tags"),
	)
	if err != nil {
		return nil, err
	}
	// Replays from the device carry the original note id.
	if id := toolcall.StringParam(args, "id", ""); id != "" {
		n.ID = id
	}
	if err := s.store.CreateNote(ctx, n); err != nil {
		return nil, err
	}
	s.hub.Broadcast("note_created", map[string]any{"id": n.ID, "title": n.Title})
	return n, nil
}

func fnNotesList(ctx context.Context, s *Server, args map[string]any) (any, error) {
	list, err := s.store.ListNotes(ctx,
		toolcall.StringParam(args, "userId", ""),
		toolcall.IntParam(args, "limit", 50))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []notes.Note{}
	}
	return list, nil
}

func fnNotesUpdate(ctx context.Context, s *Server, args map[string]any) (any, error) {
	id := toolcall.StringParam(args, "id", "")
	if id == "" {
		return nil, fmt.Errorf("%w: id required", store.ErrValidation)
	}
	var patch store.NotePatch
	if v, ok := args["title"].(string); ok {
		patch.Title = &v
	}
	if v, ok := args["content"].(string); ok {
		patch.Content = &v
	}
	if tags := argStringSlice(args, "tags"); tags != nil {
		patch.Tags = tags
	}
	if err := s.store.UpdateNote(ctx, id, patch); err != nil {
		return nil, err
	}
	return map[string]any{"id": id}, nil
}

func fnNotesRemove(ctx context.Context, s *Server, args map[string]any) (any, error) {
	id := toolcall.StringParam(args, "id", "")
	if err := s.store.DeleteNote(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "deleted": true}, nil
}

func fnNotesSearch(ctx context.Context, s *Server, args map[string]any) (any, error) {
	list, err := s.store.SearchNotes(ctx,
		toolcall.StringParam(args, "query", ""),
		toolcall.IntParam(args, "limit", 10))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []notes.Note{}
	}
	return list, nil
}

// --- Settings and contacts ---

func fnSettingsGet(ctx context.Context, s *Server, args map[string]any) (any, error) {
	return s.store.GetSettings(ctx, toolcall.StringParam(args, "userId", ""))
}

func fnSettingsSave(ctx context.Context, s *Server, args map[string]any) (any, error) {
	return s.store.SaveSettings(ctx, store.Settings{
		UserID:         toolcall.StringParam(args, "userId", ""),
		Name:           toolcall.StringParam(args, "name", ""),
		Email:          toolcall.StringParam(args, "email", ""),
		Bio:            toolcall.StringParam(args, "bio", ""),
		FavoriteMusic:  toolcall.StringParam(args, "favoriteMusic", ""),
		FavoriteMovies: toolcall.StringParam(args, "favoriteMovies", ""),
	})
}

func fnContactsList(ctx context.Context, s *Server, args map[string]any) (any, error) {
	list, err := s.store.ListContacts(ctx, toolcall.StringParam(args, "userId", ""))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []store.Contact{}
	}
	return list, nil
}

func fnContactAdd(ctx context.Context, s *Server, args map[string]any) (any, error) {
	return s.store.AddContact(ctx, store.Contact{
		UserID:   toolcall.StringParam(args, "userId", ""),
		Name:     toolcall.StringParam(args, "name", ""),
		Email:    toolcall.StringParam(args, "email", ""),
		Nickname: toolcall.StringParam(args, "nickname", ""),
	})
}

func fnContactUpdate(ctx context.Context, s *Server, args map[string]any) (any, error) {
	id := toolcall.StringParam(args, "id", "")
	var patch store.ContactPatch
	if v, ok := args["name"].(string); ok {
		patch.Name = &v
	}
	if v, ok := args["email"].(string); ok {
		patch.Email = &v
	}
	if v, ok := args["nickname"].(string); ok {
		patch.Nickname = &v
	}
	if err := s.store.UpdateContact(ctx, id, patch); err != nil {
		return nil, err
	}
	return map[string]any{"id": id}, nil
}

func fnContactDelete(ctx context.Context, s *Server, args map[string]any) (any, error) {
	id := toolcall.StringParam(args, "id", "")
	if err := s.store.DeleteContact(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "deleted": true}, nil
}

func fnContactFind(ctx context.Context, s *Server, args map[string]any) (any, error) {
	return s.store.FindContactByName(ctx,
		toolcall.StringParam(args, "userId", ""),
		toolcall.StringParam(args, "name", ""))
}

// --- Execution log ---

func fnLogExecution(ctx context.Context, s *Server, args map[string]any) (any, error) {
	input, _ := args["input"].(map[string]any)
	err := s.store.LogExecution(ctx, store.Execution{
		SessionID:     toolcall.StringParam(args, "sessionId", "default"),
		ToolName:      toolcall.StringParam(args, "toolName", "unknown"),
		Input:         input,
		Output:        args["output"],
		Success:       argBool(args, "success"),
		ExecutionTime: int64(toolcall.IntParam(args, "executionTime", 0)),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"logged": true}, nil
}

func fnSessionHistory(ctx context.Context, s *Server, args map[string]any) (any, error) {
	list, err := s.store.SessionHistory(ctx, toolcall.StringParam(args, "sessionId", "default"))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []store.Execution{}
	}
	return list, nil
}

func fnRecentExecutions(ctx context.Context, s *Server, args map[string]any) (any, error) {
	list, err := s.store.RecentExecutions(ctx, toolcall.IntParam(args, "limit", 20))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []store.Execution{}
	}
	return list, nil
}

// --- Realtime events ---

func fnNotifyClients(ctx context.Context, s *Server, args map[string]any) (any, error) {
	event := toolcall.StringParam(args, "event", "")
	if event == "" {
		return nil, fmt.Errorf("%w: event required", store.ErrValidation)
	}
	data, _ := args["data"].(map[string]any)
	if err := s.store.AddEvent(ctx, event, data); err != nil {
		return nil, err
	}
	s.hub.Broadcast(event, data)
	return map[string]any{"notified": true}, nil
}

func fnDrainEvents(ctx context.Context, s *Server, args map[string]any) (any, error) {
	list, err := s.store.DrainEvents(ctx, toolcall.IntParam(args, "limit", 10))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []store.Event{}
	}
	return list, nil
}

func argStringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}
