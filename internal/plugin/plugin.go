// Package plugin is the lifecycle controller the host simulation calls into.
// A Plugin is the explicit context object: it owns the configuration, the
// logger, the router and the listener for one bridge instance.
package plugin

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/sync/errgroup"

	"simbridge/internal/admin"
	"simbridge/internal/config"
	"simbridge/internal/router"
	"simbridge/internal/server"
	"simbridge/internal/sim"
)

var (
	ErrAlreadyInitialized = errors.New("plugin already initialized")
	ErrShutdown           = errors.New("plugin has been shut down")
)

type Plugin struct {
	cfg    *config.Config
	logger *slog.Logger
	facade sim.Facade
	router *router.Router
	server *server.Server
	admin  *admin.Server

	mu           sync.Mutex
	group        *errgroup.Group // nil until Initialize succeeds
	stopped      bool            // set once Shutdown starts; Initialize refuses afterwards
	shutdownOnce sync.Once
}

func New(cfg *config.Config, facade sim.Facade, logger *slog.Logger) *Plugin {
	if logger == nil {
		logger = slog.Default()
	}
	rt := router.New(facade, logger)
	srv := server.New(rt, server.Options{MaxFrameSize: cfg.MaxFrameSize}, logger)

	p := &Plugin{
		cfg:    cfg,
		logger: logger.With("component", "plugin"),
		facade: facade,
		router: rt,
		server: srv,
	}
	if cfg.AdminAddr() != "" {
		p.admin = admin.New(srv, rt, logger)
	}
	return p
}

// Initialize binds the bridge on port and starts serving in the background.
// A bind failure wraps server.ErrBind and leaves nothing running, so the call
// may be retried. After Shutdown it returns ErrShutdown.
func (p *Plugin) Initialize(port int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrShutdown
	}
	if p.group != nil {
		return ErrAlreadyInitialized
	}

	addr := p.cfg.ListenAddr(port)
	if err := p.server.Listen(addr); err != nil {
		p.logger.Error("bind_failed", "addr", addr, "error", err.Error())
		return err
	}
	if p.admin != nil {
		if err := p.admin.Listen(p.cfg.AdminAddr()); err != nil {
			p.logger.Error("admin_bind_failed", "addr", p.cfg.AdminAddr(), "error", err.Error())
			// roll back the bridge bind only; Stop is reserved for Shutdown
			if rerr := p.server.Release(); rerr != nil {
				p.logger.Warn("listener_release_failed", "error", rerr.Error())
			}
			return err
		}
	}

	g := new(errgroup.Group)
	g.Go(p.server.Serve)
	if p.admin != nil {
		g.Go(p.admin.Serve)
	}
	p.group = g

	p.logger.Info("plugin_initialized", "addr", p.server.Addr().String())
	return nil
}

// Addr is the bound bridge address, or nil before Initialize.
func (p *Plugin) Addr() net.Addr {
	return p.server.Addr()
}

// AdminAddr is nil when the status surface is disabled or not yet bound.
func (p *Plugin) AdminAddr() net.Addr {
	if p.admin == nil {
		return nil
	}
	return p.admin.Addr()
}

func (p *Plugin) Stats() server.Stats {
	return p.server.Stats()
}

// Wait blocks until the background tasks have exited and returns the first
// error among them.
func (p *Plugin) Wait() error {
	p.mu.Lock()
	g := p.group
	p.mu.Unlock()
	if g == nil {
		return nil
	}
	return g.Wait()
}

// Shutdown stops accepting, lets in-flight exchanges finish within the
// configured grace period and then closes whatever is left. Safe to call
// more than once. Calling it before Initialize makes the plugin unusable.
func (p *Plugin) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.ShutdownGrace)
		defer cancel()

		p.logger.Info("plugin_shutting_down", "grace", p.cfg.ShutdownGrace)
		if p.admin != nil {
			if err := p.admin.Shutdown(ctx); err != nil {
				p.logger.Warn("admin_shutdown_failed", "error", err.Error())
			}
		}
		if err := p.server.Stop(ctx); err != nil {
			p.logger.Warn("server_forced_shutdown", "error", err.Error())
		}
		if err := p.Wait(); err != nil {
			p.logger.Error("background_task_failed", "error", err.Error())
		}
		p.logger.Info("plugin_shutdown_complete")
	})
}
