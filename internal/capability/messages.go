package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/voxrelay/voxctl/internal/toolcall"
)

// Message is one delivered notification visible to the agent.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Inbox exposes delivered message notifications.
type Inbox interface {
	Authorized() bool
	Messages(ctx context.Context) ([]Message, error)
}

// Messages reads recent messages from the inbox. Parameters: count (default
// 1) and an optional sender filter matched by containment.
type Messages struct {
	Inbox Inbox
}

func NewMessages(inbox Inbox) *Messages { return &Messages{Inbox: inbox} }

func (m *Messages) Name() string { return "read_messages" }

func (m *Messages) Execute(ctx context.Context, params map[string]any) toolcall.Result {
	count := toolcall.IntParam(params, "count", 1)
	if count < 1 {
		count = 1
	}
	sender := toolcall.StringParam(params, "sender", "")

	if !m.Inbox.Authorized() {
		return toolcall.Failure("Notification access not authorized")
	}
	msgs, err := m.Inbox.Messages(ctx)
	if err != nil {
		return toolcall.Failure("Error reading messages: %v", err)
	}

	if sender != "" {
		lower := strings.ToLower(sender)
		filtered := msgs[:0]
		for _, msg := range msgs {
			if strings.Contains(strings.ToLower(msg.Sender), lower) {
				filtered = append(filtered, msg)
			}
		}
		msgs = filtered
	}

	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Timestamp.After(msgs[j].Timestamp) })
	if len(msgs) > count {
		msgs = msgs[:count]
	}

	if len(msgs) == 0 {
		return toolcall.Failure("No messages found in notification center. Check the Messages app directly.")
	}

	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		name := msg.Sender
		if name == "" {
			name = "Unknown"
		}
		lines = append(lines, fmt.Sprintf("Message from %s: %s", name, msg.Body))
	}
	return toolcall.Result{
		Success: true,
		Data:    map[string]any{"messages": msgs},
		Message: strings.Join(lines, ". "),
	}
}

// FileInbox reads messages from a JSON file maintained by the notification
// bridge. A missing file means an empty inbox, not an error.
type FileInbox struct {
	Path string
}

func (f *FileInbox) Authorized() bool { return true }

func (f *FileInbox) Messages(ctx context.Context) ([]Message, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading inbox: %w", err)
	}
	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("parsing inbox %s: %w", f.Path, err)
	}
	return msgs, nil
}
