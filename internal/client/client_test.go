package client

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbridge/internal/protocol"
)

// echoResult answers every frame with a GenericResult naming the request type.
func echoResult(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		dec := protocol.NewDecoder(conn, 0)
		for {
			env, err := dec.Decode()
			if err != nil {
				return
			}
			resp, _ := protocol.Pack(&protocol.GenericResult{Success: true, Message: env.TypeName()})
			if err := protocol.WriteFrame(conn, resp); err != nil {
				return
			}
		}
	}()
	return ln.Addr().String()
}

func TestClientCall(t *testing.T) {
	addr := echoResult(t)

	c, err := Dial(addr, 2*time.Second)
	require.NoError(t, err)
	defer c.Close()

	for _, msg := range []protocol.Message{
		&protocol.RainChange{Intensity: 0.2},
		&protocol.RunScript{ScriptText: "hint 1"},
	} {
		out, err := c.Call(msg)
		require.NoError(t, err)
		res, ok := out.(*protocol.GenericResult)
		require.True(t, ok)
		assert.True(t, res.Success)
		assert.Equal(t, msg.TypeName(), res.Message)
	}
}

func TestClientClosed(t *testing.T) {
	addr := echoResult(t)

	c, err := Dial(addr, time.Second)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = c.Send(&protocol.RainChange{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(addr, 500*time.Millisecond)
	assert.Error(t, err)
}

func TestResultRejectsRequestVariant(t *testing.T) {
	env, err := protocol.Pack(&protocol.RainChange{Intensity: 1})
	require.NoError(t, err)

	_, err = Result(env)
	assert.ErrorContains(t, err, "unexpected reply")
}
