package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// WSClient is an environment session over a websocket the agent dials out
// to. Each text frame carries one JSON envelope; handlers are shared with
// Connection.
type WSClient struct {
	conn     *websocket.Conn
	handlers map[string]Handler
	wmu      sync.Mutex
}

// DialWS connects to an environment endpoint such as ws://localhost:8080/v1/agent.
func DialWS(ctx context.Context, url string) (*WSClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &WSClient{conn: conn, handlers: make(map[string]Handler)}, nil
}

func (c *WSClient) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *WSClient) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.write(env)
}

func (c *WSClient) write(env Envelope) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteJSON(env)
}

func (c *WSClient) Close() error { return c.conn.Close() }

// ReadLoop blocks until ctx is cancelled or the socket fails. It closes the
// socket on return.
func (c *WSClient) ReadLoop(ctx context.Context) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.conn.Close()
		case <-done:
		}
	}()
	defer c.conn.Close()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			slog.Info("websocket read ended", "error", err)
			return
		}
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			slog.Warn("dropping malformed frame", "error", err)
			continue
		}

		resp, ok := dispatch(c.handlers, env)
		if !ok {
			continue
		}
		if err := c.write(*resp); err != nil {
			slog.Error("failed to send response", "type", resp.Type, "error", err)
			return
		}
	}
}
