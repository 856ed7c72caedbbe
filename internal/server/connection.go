package server

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"simbridge/internal/protocol"
)

// Connection runs the receive, dispatch, send loop for one client. Requests
// on a connection are handled strictly one at a time in arrival order.
type Connection struct {
	ID        string // unique identifier = key in the manager map
	conn      net.Conn
	decoder   *protocol.Decoder
	server    *Server
	logger    *slog.Logger
	closeOnce sync.Once
}

func NewConnection(conn net.Conn, server *Server) *Connection {
	id := uuid.NewString()
	return &Connection{
		ID:      id,
		conn:    conn,
		decoder: protocol.NewDecoder(conn, server.opts.MaxFrameSize),
		server:  server,
		logger: server.logger.With(
			"conn_id", id,
			"remote_addr", conn.RemoteAddr().String(),
		),
	}
}

// Serve loops until the peer closes, the stream breaks or the server stops.
// The socket is released exactly once on every exit path.
func (c *Connection) Serve() {
	defer c.Close()
	c.logger.Info("client_connected")

	for c.server.running.Load() {
		env, err := c.decoder.Decode()
		if err != nil {
			c.logReadError(err)
			return
		}

		resp := c.server.router.Route(env)
		if err := protocol.WriteFrame(c.conn, resp); err != nil {
			if isClosedConnError(err) {
				c.logger.Debug("client_write_on_closed_connection", "payload_type", env.TypeName())
				return
			}
			c.logger.Error("client_write_failed",
				"payload_type", env.TypeName(),
				"error", err.Error(),
			)
			return
		}
		c.server.exchanges.Add(1)
		c.logger.Debug("request_handled",
			"payload_type", env.TypeName(),
			"response_type", resp.TypeName(),
		)
	}
	c.logger.Info("client_loop_stopped", "reason", "server_stopping")
}

func (c *Connection) logReadError(err error) {
	switch {
	case errors.Is(err, io.EOF):
		c.logger.Info("client_disconnected")
	case errors.Is(err, protocol.ErrDecode):
		c.logger.Warn("frame_decode_failed", "error", err.Error())
	case isClosedConnError(err):
		// closed locally during shutdown
		c.logger.Debug("client_connection_closed")
	default:
		c.logger.Error("client_read_failed", "error", err.Error())
	}
}

func isClosedConnError(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

// Close signals no more sends, then releases the socket. Safe to call more
// than once and from several goroutines.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		if tcp, ok := c.conn.(*net.TCPConn); ok {
			if err := tcp.CloseWrite(); err != nil && !isClosedConnError(err) {
				c.logger.Debug("client_close_write_failed", "error", err.Error())
			}
		}
		if err := c.conn.Close(); err != nil && !isClosedConnError(err) {
			c.logger.Warn("client_close_failed", "error", err.Error())
		}
	})
}
