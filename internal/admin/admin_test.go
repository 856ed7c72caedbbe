package admin

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simbridge/internal/router"
	"simbridge/internal/server"
)

type fakeServer struct{ stats server.Stats }

func (f *fakeServer) Stats() server.Stats { return f.stats }

type fakeRouter struct{ stats router.Stats }

func (f *fakeRouter) Stats() router.Stats { return f.stats }

func newTestAdmin(listening bool) *Server {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := &fakeServer{stats: server.Stats{
		Listening:         listening,
		Addr:              "127.0.0.1:1234",
		ActiveConnections: 2,
		AcceptedTotal:     5,
		ExchangesTotal:    11,
	}}
	rt := &fakeRouter{stats: router.Stats{
		Routed:          map[string]int64{"simbridge.FogChange": 3},
		UnknownPayloads: 1,
		Failures:        2,
	}}
	return New(srv, rt, logger)
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name       string
		listening  bool
		wantStatus int
		wantBody   string
	}{
		{"listening", true, http.StatusOK, "ok"},
		{"stopped", false, http.StatusServiceUnavailable, "stopped"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdmin(tt.listening)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			a.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestStats(t *testing.T) {
	a := newTestAdmin(true)
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Server.ActiveConnections)
	assert.Equal(t, int64(11), got.Server.ExchangesTotal)
	assert.Equal(t, int64(3), got.Router.Routed["simbridge.FogChange"])
	assert.Equal(t, int64(1), got.Router.UnknownPayloads)
}

func TestUnknownRoute(t *testing.T) {
	a := newTestAdmin(true)
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/stats", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListenServeShutdown(t *testing.T) {
	a := newTestAdmin(true)
	require.NoError(t, a.Listen("127.0.0.1:0"))

	served := make(chan error, 1)
	go func() { served <- a.Serve() }()

	resp, err := http.Get("http://" + a.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, a.Shutdown(ctx))
	assert.NoError(t, <-served)
}

func TestNewLeavesGinModeAlone(t *testing.T) {
	gin.SetMode(gin.DebugMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	New(&fakeServer{}, &fakeRouter{}, nil)
	assert.Equal(t, gin.DebugMode, gin.Mode())
}
