package search

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultAgentModel = "gemini-2.0-flash"

// TaskRunner executes free-form multi-step requests through a Gemini chat
// session. With no API key configured it reports unavailability instead of
// failing.
type TaskRunner struct {
	client *genai.Client
	model  string
}

// NewTaskRunner connects to the Gemini API. An empty apiKey yields a nil
// runner, which Run treats as "not configured".
func NewTaskRunner(ctx context.Context, apiKey, model string) (*TaskRunner, error) {
	if apiKey == "" {
		return nil, nil
	}
	if model == "" {
		model = defaultAgentModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating task agent client: %w", err)
	}
	return &TaskRunner{client: client, model: model}, nil
}

// Available reports whether the runner can take requests.
func (t *TaskRunner) Available() bool {
	return t != nil && t.client != nil
}

// Run sends the request to the model and returns its answer.
func (t *TaskRunner) Run(ctx context.Context, request string) (string, error) {
	if !t.Available() {
		return "", ErrNoAPIKey
	}
	chat, err := t.client.Chats.Create(ctx, t.model, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: "You are a voice assistant completing multi-step tasks. Answer concisely; the reply is spoken aloud."}},
		},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("creating task chat: %w", err)
	}
	resp, err := chat.SendMessage(ctx, genai.Part{Text: request})
	if err != nil {
		return "", fmt.Errorf("running task: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "Task completed", nil
	}
	return text, nil
}
