package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"simbridge/internal/config"
	"simbridge/internal/logging"
	"simbridge/internal/plugin"
	"simbridge/internal/server"
	"simbridge/internal/sim"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, logFile, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Dir:    cfg.LogDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	code := run(cfg, logger)
	logFile.Close()
	os.Exit(code)
}

func run(cfg *config.Config, logger *slog.Logger) int {
	bridge := plugin.New(cfg, sim.NewSandbox(logger), logger)

	logger.Info("starting_bridge",
		"addr", cfg.ListenAddr(cfg.Port),
		"admin_addr", cfg.AdminAddr(),
	)
	if err := bridge.Initialize(cfg.Port); err != nil {
		if errors.Is(err, server.ErrBind) {
			logger.Error("bridge_bind_failed", "error", err.Error())
		} else {
			logger.Error("bridge_start_failed", "error", err.Error())
		}
		return 1
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- bridge.Wait()
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received_shutdown_signal", "signal", sig.String())
		bridge.Shutdown()
		logger.Info("bridge_stopped_gracefully")
		return 0
	case err := <-errChan:
		bridge.Shutdown()
		if err != nil {
			logger.Error("bridge_error", "error", err.Error())
			return 1
		}
		return 0
	}
}
