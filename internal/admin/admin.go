// Package admin serves a small read-only HTTP status surface next to the
// bridge listener.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"simbridge/internal/router"
	"simbridge/internal/server"
)

type ServerStats interface {
	Stats() server.Stats
}

type RouterStats interface {
	Stats() router.Stats
}

type StatsResponse struct {
	Server server.Stats `json:"server"`
	Router router.Stats `json:"router"`
}

type Server struct {
	engine *gin.Engine
	http   *http.Server
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

func New(srv ServerStats, rt RouterStats, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "admin")

	// mode is process-wide and set by the binary
	r := gin.New()
	r.Use(requestLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		if !srv.Stats().Listening {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "stopped"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, StatsResponse{
			Server: srv.Stats(),
			Router: rt.Stats(),
		})
	})

	return &Server{
		engine: r,
		http: &http.Server{
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the routes for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Listen(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("admin listen %s: %w", addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.logger.Info("admin_listening", "addr", listener.Addr().String())
	return nil
}

func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve blocks until Shutdown. A clean shutdown returns nil.
func (s *Server) Serve() error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return errors.New("admin server is not listening")
	}
	if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("admin_request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
