// Package session maintains the agent's live channel to the backend: a
// websocket over which queued commands arrive without waiting for the next
// poll. Delivery is best effort; the polling relay is the safety net.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/voxrelay/voxctl/internal/store"
	"github.com/voxrelay/voxctl/internal/toolcall"
)

// Handler executes a delivered command and returns its result.
type Handler func(ctx context.Context, cmd store.Command) toolcall.Result

// frame mirrors the hub's wire format.
type frame struct {
	Event     string         `json:"event"`
	Data      map[string]any `json:"data"`
	Timestamp int64          `json:"timestamp"`
}

type resultFrame struct {
	CallID string          `json:"callId"`
	Result toolcall.Result `json:"result"`
}

// Client is a live-channel connection.
type Client struct {
	url     string
	handler Handler
}

func New(url string, handler Handler) *Client {
	return &Client{url: url, handler: handler}
}

// Run connects and processes frames until the context is cancelled or the
// connection drops. Callers reconnect; Run itself never retries.
func (c *Client) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("connecting live channel: %w", err)
	}
	defer conn.Close()
	log.Info().Str("url", c.url).Msg("live channel connected")

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("live channel read: %w", err)
		}
		c.handleFrame(ctx, conn, f)
	}
}

func (c *Client) handleFrame(ctx context.Context, conn *websocket.Conn, f frame) {
	if f.Event != "command" {
		log.Debug().Str("event", f.Event).Msg("ignoring live channel event")
		return
	}

	cmd, err := DecodeCommand(f.Data)
	if err != nil {
		log.Error().Err(err).Interface("data", f.Data).Msg("undecodable command frame")
		return
	}

	res := c.handler(ctx, cmd)
	if err := conn.WriteJSON(resultFrame{CallID: cmd.ID, Result: res}); err != nil {
		log.Warn().Err(err).Str("call", cmd.ID).Msg("result frame write failed")
	}
}

// DecodeCommand converts a command frame payload into a queue record.
// Decoding is strict: a frame without an action is an error, not a silent
// skip.
func DecodeCommand(data map[string]any) (store.Command, error) {
	action, _ := data["action"].(string)
	if action == "" {
		return store.Command{}, fmt.Errorf("command frame has no action")
	}
	id, _ := data["id"].(string)
	params, _ := data["params"].(map[string]any)
	if params == nil {
		params = map[string]any{}
	}
	var ts int64
	if v, ok := data["timestamp"].(float64); ok {
		ts = int64(v)
	}
	return store.Command{ID: id, Action: action, Params: params, Timestamp: ts}, nil
}

// RunWithReconnect keeps the live channel up, reconnecting with a fixed
// backoff until the context ends.
func (c *Client) RunWithReconnect(ctx context.Context, backoff time.Duration) {
	for {
		if err := c.Run(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("live channel dropped")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}
