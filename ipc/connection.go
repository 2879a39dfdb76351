package ipc

import (
	"io"
	"log/slog"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection serves one environment session over a stream socket. Player is
// filled in by the caller once the hello handshake names it.
type Connection struct {
	conn     io.ReadWriteCloser
	handlers map[string]Handler
	Player   string
	// Compress sends replies as zstd frames. Incoming frames are accepted
	// either way.
	Compress bool
}

func NewConnection(conn io.ReadWriteCloser, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{conn: conn, handlers: handlers}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.write(env)
}

func (c *Connection) write(env Envelope) error {
	if c.Compress {
		return WriteCompressedEnvelope(c.conn, env)
	}
	return WriteEnvelope(c.conn, env)
}

// ReadLoop serves frames until the peer hangs up or a reply cannot be
// written, then closes the connection.
func (c *Connection) ReadLoop() {
	defer c.conn.Close()

	for {
		env, err := ReadEnvelope(c.conn)
		if err != nil {
			slog.Info("session ended", "player", c.Player, "error", err)
			return
		}

		reply, ok := dispatch(c.handlers, env)
		if !ok {
			continue
		}
		if err := c.write(*reply); err != nil {
			slog.Error("failed to send reply", "type", reply.Type, "error", err)
			return
		}
		slog.Debug("sent reply", "type", reply.Type, "player", c.Player)
	}
}

// dispatch runs the handler registered for env. A handler error is logged but
// any reply returned with it is still sent, so the environment is never left
// waiting on a command.
func dispatch(handlers map[string]Handler, env Envelope) (*Envelope, bool) {
	handler, ok := handlers[env.Type]
	if !ok {
		slog.Warn("unhandled message type", "type", env.Type)
		return nil, false
	}
	reply, err := handler(env)
	if err != nil {
		slog.Error("handler failed", "type", env.Type, "error", err)
	}
	return reply, reply != nil
}
