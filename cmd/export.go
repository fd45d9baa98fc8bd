package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/koopa0/pocketexpert/internal/app"
	"github.com/koopa0/pocketexpert/internal/config"
	"github.com/koopa0/pocketexpert/internal/log"
)

// runExport prints the full data export as JSON on stdout. Works
// offline; no API key required.
func runExport() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Logging is discarded so stdout stays clean JSON.
	a, err := app.NewStorage(cfg, log.NewNop())
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer a.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a.Store.ExportAll(ctx)); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}
