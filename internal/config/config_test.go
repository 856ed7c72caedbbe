package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"SIMBRIDGE_HOST", "SIMBRIDGE_PORT", "ADMIN_PORT", "LOG_LEVEL",
	"LOG_FORMAT", "LOG_DIR", "MAX_FRAME_SIZE", "SHUTDOWN_GRACE",
}

// clearEnv unsets every key for the duration of the test. Setenv first so
// the previous values come back on cleanup.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, 1234, cfg.Port)
	assert.Equal(t, 0, cfg.AdminPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, 1024*1024, cfg.MaxFrameSize)
	assert.Equal(t, 5*time.Second, cfg.ShutdownGrace)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ":1234", cfg.ListenAddr(cfg.Port))
	assert.Empty(t, cfg.AdminAddr())
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIMBRIDGE_HOST", "127.0.0.1")
	t.Setenv("SIMBRIDGE_PORT", "4000")
	t.Setenv("ADMIN_PORT", "4001")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SHUTDOWN_GRACE", "250ms")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 250*time.Millisecond, cfg.ShutdownGrace)
	assert.Equal(t, "127.0.0.1:4000", cfg.ListenAddr(cfg.Port))
	assert.Equal(t, "127.0.0.1:4001", cfg.AdminAddr())
	assert.NoError(t, cfg.Validate())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SIMBRIDGE_PORT", "abc"},
		{"ADMIN_PORT", "1.5"},
		{"MAX_FRAME_SIZE", "1MB"},
		{"SHUTDOWN_GRACE", "five"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := &Config{
		Port:         70000,
		AdminPort:    -1,
		LogLevel:     "trace",
		LogFormat:    "xml",
		MaxFrameSize: 0,
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"SIMBRIDGE_PORT", "ADMIN_PORT", "LOG_LEVEL", "LOG_FORMAT", "MAX_FRAME_SIZE"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateSamePorts(t *testing.T) {
	cfg := &Config{Port: 5000, AdminPort: 5000, LogLevel: "info", LogFormat: "text", MaxFrameSize: 1}
	assert.ErrorContains(t, cfg.Validate(), "must differ")
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SIMBRIDGE_PORT=4100\nLOG_FORMAT=json\n"), 0o600))
	chdir(t, dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 4100, cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigWithoutDotEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 1234, cfg.Port)
}

// chdir switches into dir for the duration of the test and restores the
// previous working directory on cleanup (equivalent of testing.T.Chdir,
// which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
