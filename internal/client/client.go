// Package client is the controller side of the bridge protocol: it sends one
// request frame and waits for the matching response frame.
package client

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"simbridge/internal/protocol"
)

var ErrClosed = errors.New("client is closed")

type Client struct {
	conn    net.Conn
	decoder *protocol.Decoder
	timeout time.Duration
	mu      sync.Mutex // one request in flight at a time
	closed  bool
}

// Dial connects to the bridge. timeout bounds both the dial and every
// request/response exchange; zero means no deadline.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	return &Client{
		conn:    conn,
		decoder: protocol.NewDecoder(conn, 0),
		timeout: timeout,
	}, nil
}

func dialTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 10 * time.Second
	}
	return timeout
}

// Send packs msg, writes it and returns the response envelope.
func (c *Client) Send(msg protocol.Message) (*protocol.Envelope, error) {
	env, err := protocol.Pack(msg)
	if err != nil {
		return nil, err
	}
	return c.SendEnvelope(env)
}

func (c *Client) SendEnvelope(env *protocol.Envelope) (*protocol.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, fmt.Errorf("set deadline: %w", err)
		}
	}
	if err := protocol.WriteFrame(c.conn, env); err != nil {
		return nil, err
	}
	resp, err := c.decoder.Decode()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return resp, nil
}

// Call sends msg and decodes the response into its concrete variant.
func (c *Client) Call(msg protocol.Message) (protocol.Message, error) {
	resp, err := c.Send(msg)
	if err != nil {
		return nil, err
	}
	return Result(resp)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Result opens a response envelope. Only the two response variants are
// accepted; anything else is reported as an unexpected reply.
func Result(env *protocol.Envelope) (protocol.Message, error) {
	msg, err := protocol.Open(env)
	if err != nil {
		return nil, err
	}
	switch msg.(type) {
	case *protocol.GenericResult, *protocol.LineOfSightResponse:
		return msg, nil
	default:
		return nil, fmt.Errorf("unexpected reply %s", env.TypeName())
	}
}
