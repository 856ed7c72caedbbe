package command

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbridge/internal/config"
	"simbridge/internal/plugin"
	"simbridge/internal/protocol"
	"simbridge/internal/sim"
)

func TestParseVector(t *testing.T) {
	v, err := parseVector("1.5, -2,3")
	require.NoError(t, err)
	assert.Equal(t, protocol.Vector3{X: 1.5, Y: -2, Z: 3}, v)

	for _, bad := range []string{"", "1,2", "a,b,c", "1,2,3,4"} {
		_, err := parseVector(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseEntityID(t *testing.T) {
	id, err := parseEntityID("1:3001:7")
	require.NoError(t, err)
	assert.Equal(t, protocol.EntityIdentifier{Site: 1, Application: 3001, Entity: 7}, id)

	_, err = parseEntityID("1:-2:3")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"06:30", 6*time.Hour + 30*time.Minute, true},
		{"23:59:59", 24*time.Hour - time.Second, true},
		{"24:00", 0, false},
		{"12", 0, false},
		{"aa:bb", 0, false},
	}
	for _, tt := range tests {
		got, err := parseClock(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseSide(t *testing.T) {
	side, err := parseSide("OPFOR")
	require.NoError(t, err)
	assert.Equal(t, protocol.SideEnemy, side)

	_, err = parseSide("neutral")
	assert.Error(t, err)
}

func startBridge(t *testing.T) (string, *sim.Sandbox) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sandbox := sim.NewSandbox(logger)
	p := plugin.New(&config.Config{
		Host:          "127.0.0.1",
		MaxFrameSize:  protocol.DefaultMaxFrameSize,
		ShutdownGrace: 100 * time.Millisecond,
	}, sandbox, logger)
	require.NoError(t, p.Initialize(0))
	t.Cleanup(p.Shutdown)
	return p.Addr().String(), sandbox
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsAgainstBridge(t *testing.T) {
	addr, sandbox := startBridge(t)
	sandbox.Spawn("scout", "Soldier", sim.FactionFriendly, sim.Vec3{})

	out, err := run(t, "--addr", addr, "weather", "rain", "0.5")
	require.NoError(t, err)
	assert.Contains(t, out, "ok:")
	assert.InDelta(t, 0.5, sandbox.Weather().Rain, 1e-9)

	out, err = run(t, "--addr", addr, "actor", "create", "Jeep", "--side", "enemy", "--at", "10,0,0")
	require.NoError(t, err)
	assert.Contains(t, out, "jeep-2")

	out, err = run(t, "--addr", addr, "los", "scout", "--to", "10,0,0")
	require.NoError(t, err)
	assert.Equal(t, "visible\n", out)

	_, err = run(t, "--addr", addr, "actor", "teleport", "ghost", "--at", "1,1,1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLOSRequiresObserver(t *testing.T) {
	losObserverID = ""
	_, err := run(t, "--addr", "127.0.0.1:1", "los", "--to", "1,2,3")
	assert.ErrorContains(t, err, "observer")
}
