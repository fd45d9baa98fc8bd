package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/koopa0/pocketexpert/internal/app"
	"github.com/koopa0/pocketexpert/internal/config"
)

// runMigrate runs the legacy data migration without starting the
// server. Works offline; no API key required.
func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.NewStorage(cfg, newLogger(cfg))
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer a.Close()

	report, err := a.RunMigration(ctx)
	if err != nil {
		return fmt.Errorf("migrating legacy data: %w", err)
	}

	switch {
	case report.AlreadyDone:
		fmt.Println("Migration already complete, nothing to do.")
	case len(report.Migrated) == 0 && len(report.Failed) == 0:
		fmt.Println("No legacy data found.")
	default:
		fmt.Printf("Migrated %d key(s).\n", len(report.Migrated))
		for _, key := range report.Migrated {
			fmt.Printf("  ok      %s\n", key)
		}
		for _, key := range report.Failed {
			fmt.Printf("  failed  %s (will retry on next run)\n", key)
		}
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d key(s) failed to migrate", len(report.Failed))
	}
	return nil
}
