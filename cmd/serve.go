package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/koopa0/pocketexpert/api"
	"github.com/koopa0/pocketexpert/internal/app"
	"github.com/koopa0/pocketexpert/internal/config"
	"github.com/koopa0/pocketexpert/internal/log"
)

const defaultAddrHint = api.DefaultAddr

// runServe initializes the application and starts the HTTP API server.
// Legacy data migration runs before the server accepts traffic.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	addr, err := serveAddr(cfg)
	if err != nil {
		return fmt.Errorf("parsing address: %w", err)
	}

	logger := newLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	report, err := a.RunMigration(ctx)
	if err != nil {
		return fmt.Errorf("migrating legacy data: %w", err)
	}
	if len(report.Failed) > 0 {
		logger.Warn("some legacy keys could not be migrated, they will be retried on next start",
			"failed", report.Failed)
	}

	srv := api.NewServer(api.Deps{
		Pinger:   a.Store,
		Chat:     a.Chat,
		Sessions: a.Sessions,
		Memories: a.Memories,
		Store:    a.Store,
		Insights: a.Assistant,
		Logger:   logger,
	})
	return srv.Run(ctx, addr)
}

// serveAddr resolves the listen address: positional argument first,
// then configuration, then the API default.
func serveAddr(cfg *config.Config) (string, error) {
	addr := cfg.HTTPAddr
	if len(os.Args) > 2 {
		addr = os.Args[2]
	}
	if addr == "" {
		return "", nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return addr, nil
}

// newLogger builds the process logger from configuration.
func newLogger(cfg *config.Config) log.Logger {
	return log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
}
