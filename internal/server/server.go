package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"simbridge/internal/protocol"
)

var (
	// ErrBind is returned when the listening socket cannot be created.
	ErrBind = errors.New("failed to bind listener")

	ErrNotListening = errors.New("server is not listening")
)

// Router turns one request envelope into one response envelope. It must never
// return nil and must be safe to call from many connections at once.
type Router interface {
	Route(env *protocol.Envelope) *protocol.Envelope
}

type Options struct {
	// MaxFrameSize bounds a single request frame; <= 0 uses the codec default.
	MaxFrameSize int
	// AcceptRetryRate paces the accept loop after accept errors.
	AcceptRetryRate  rate.Limit
	AcceptRetryBurst int
}

func (o Options) withDefaults() Options {
	if o.MaxFrameSize <= 0 {
		o.MaxFrameSize = protocol.DefaultMaxFrameSize
	}
	if o.AcceptRetryRate <= 0 {
		o.AcceptRetryRate = rate.Limit(20)
	}
	if o.AcceptRetryBurst <= 0 {
		o.AcceptRetryBurst = 1
	}
	return o
}

// Server owns the listening socket and one goroutine per accepted connection.
type Server struct {
	router Router
	// shared by every connection goroutine, must be safe for concurrent use
	opts    Options
	logger  *slog.Logger
	Manager *ConnectionManager
	// tracks live connections so a forced shutdown can close them

	mu       sync.Mutex // guards listener and the running transition
	listener net.Listener
	// nil before Listen and after Release
	running atomic.Bool
	// cleared once at shutdown; connection loops check it between exchanges
	wg       sync.WaitGroup // one per live connection
	stopOnce sync.Once      // Stop only acts on the first call

	acceptLimiter *rate.Limiter // paces retries after accept errors
	accepted      atomic.Int64  // connections accepted since Listen
	exchanges     atomic.Int64  // request/response pairs fully written
}

func New(router Router, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()
	logger = logger.With("component", "server")
	return &Server{
		router:        router,
		opts:          opts,
		logger:        logger,
		Manager:       NewConnectionManager(logger),
		acceptLimiter: rate.NewLimiter(opts.AcceptRetryRate, opts.AcceptRetryBurst),
	}
}

// Listen binds addr. Failures wrap ErrBind.
func (s *Server) Listen(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("%w: %s: already listening on %s", ErrBind, addr, s.listener.Addr())
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBind, addr, err)
	}
	s.listener = listener
	s.running.Store(true)
	s.logger.Info("listener_started", "addr", listener.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Release closes and forgets the listener of a server whose accept loop never
// ran, so a later Listen can bind again. Unlike Stop it can be repeated and
// leaves the server reusable.
func (s *Server) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	s.running.Store(false)
	err := s.listener.Close()
	s.logger.Info("listener_released", "addr", s.listener.Addr().String())
	s.listener = nil
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (s *Server) Running() bool {
	return s.running.Load()
}

// Serve runs the accept loop until Stop. It returns nil after a clean stop.
func (s *Server) Serve() error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return ErrNotListening
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				s.logger.Info("accept_loop_stopped")
				return nil
			}
			s.logger.Error("accept_failed", "error", err.Error())
			if werr := s.acceptLimiter.Wait(context.Background()); werr != nil {
				return fmt.Errorf("accept retry: %w", werr)
			}
			continue
		}

		// The running check and wg.Add share the lock with Stop so no
		// connection is added once Stop has started waiting.
		// conn is passed as an argument so each goroutine owns its own socket.
		s.mu.Lock()
		if !s.running.Load() {
			s.mu.Unlock()
			conn.Close()
			continue
		}
		s.wg.Add(1)
		s.mu.Unlock()
		s.accepted.Add(1)

		go func(conn net.Conn) {
			defer s.wg.Done()
			s.handleConnection(conn)
		}(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	client := NewConnection(conn, s)
	s.Manager.AddConnection(client)
	client.Serve()
	s.Manager.RemoveConnection(client)
}

// Stop clears the running flag, closes the listener and waits for connection
// loops to finish their current exchange. Connections still open when ctx
// expires are closed and ctx.Err() is returned. Only the first call has any
// effect; later calls return nil.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		err = s.stop(ctx)
	})
	return err
}

func (s *Server) stop(ctx context.Context) error {
	s.mu.Lock()
	s.running.Store(false)
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Warn("listener_close_failed", "error", err.Error())
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("server_stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("shutdown_grace_expired",
			"open_connections", s.Manager.Count(),
		)
		s.Manager.CloseAllConnections()
		<-done
		return ctx.Err()
	}
}

type Stats struct {
	Listening         bool   `json:"listening"`
	Addr              string `json:"addr,omitempty"`
	ActiveConnections int    `json:"active_connections"`
	AcceptedTotal     int64  `json:"accepted_total"`
	ExchangesTotal    int64  `json:"exchanges_total"`
}

func (s *Server) Stats() Stats {
	stats := Stats{
		Listening:         s.running.Load(),
		ActiveConnections: s.Manager.Count(),
		AcceptedTotal:     s.accepted.Load(),
		ExchangesTotal:    s.exchanges.Load(),
	}
	if addr := s.Addr(); addr != nil {
		stats.Addr = addr.String()
	}
	return stats
}
