package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shieldloop/sentryloop/pkg/api"
	"github.com/shieldloop/sentryloop/pkg/config"
	"github.com/shieldloop/sentryloop/pkg/events"
	"github.com/shieldloop/sentryloop/pkg/experiment"
)

// ServeCmd starts the Control API server and blocks until interrupted.
type ServeCmd struct {
	ConfigFile string `help:"YAML config file path." type:"existingfile" name:"config-file" short:"c"`
	Addr       string `help:"Override the server listen address from config." name:"addr"`
}

func (s *ServeCmd) Run() error {
	configureLogging()

	cfg, err := loadConfig(s.ConfigFile)
	if err != nil {
		return &configError{err}
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}

	gw := buildGateway(cfg.Gateway)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := checkGatewayReachable(ctx, gw); err != nil {
		slog.Warn("gateway connectivity check failed at startup; continuing, calls will retry/fallback", "error", err)
	}

	bus := events.NewBus()

	sup := experiment.NewSupervisor(buildFactory(gw, bus))
	defer sup.Shutdown()

	server := api.NewServer(sup, bus)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("control API listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(cfg.Server.Addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("control API server: %w", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadConfigKoanf("")
	}
	return config.LoadConfigKoanf(path)
}

func configureLogging() {
	level := parseLogLevel("info")
	if CLI.Debug {
		level = parseLogLevel("debug")
	}
	configureSlog(level, CLI.LogFormat, os.Stderr)
}
