// Package app assembles the application: configuration, logging,
// storage, legacy migration, domain services, and the assistant client.
// Construction is explicit and ordered; there is no DI framework.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/koopa0/pocketexpert/internal/assistant"
	"github.com/koopa0/pocketexpert/internal/chat"
	"github.com/koopa0/pocketexpert/internal/config"
	"github.com/koopa0/pocketexpert/internal/legacy"
	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/memory"
	"github.com/koopa0/pocketexpert/internal/migrate"
	"github.com/koopa0/pocketexpert/internal/observability"
	"github.com/koopa0/pocketexpert/internal/session"
	"github.com/koopa0/pocketexpert/internal/store"
	"github.com/koopa0/pocketexpert/internal/tools"
)

// App is the assembled application container.
type App struct {
	Config *config.Config
	Logger log.Logger
	Sink   *observability.Sink

	Store    *store.Store
	Legacy   *legacy.FileStore
	Migrator *migrate.Runner

	Memories *memory.Manager
	Sessions *session.Service
	Tools    *tools.Registry

	Assistant *assistant.Client
	Chat      *chat.Service
}

// NewStorage builds the offline half of the application: store, legacy
// file store, migration runner, and the domain services that need no
// API key. Commands like migrate and export run on this alone.
func NewStorage(cfg *config.Config, logger log.Logger) (*App, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	sink := observability.NewSink(logger)
	sink.Init()

	st, err := store.Open(cfg.DatabasePath(), logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	legacyStore := legacy.NewFileStore(cfg.LegacyPath())
	lockPath := filepath.Join(cfg.DataDir, "migration.lock")

	return &App{
		Config:   cfg,
		Logger:   logger,
		Sink:     sink,
		Store:    st,
		Legacy:   legacyStore,
		Migrator: migrate.New(legacyStore, st, lockPath, sink, logger),
		Memories: memory.NewManager(st, logger),
		Sessions: session.NewService(st, logger),
	}, nil
}

// New builds the full application including the assistant client and
// chat orchestration. Requires a validated serve configuration.
func New(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	a, err := NewStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	client, err := assistant.New(ctx, cfg, a.Sink, a.Logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Assistant = client
	a.Tools = tools.NewRegistry(a.Memories, a.Logger)
	a.Chat = chat.NewService(client, a.Memories, a.Tools, cfg.ContextMemoryCount, a.Sink, a.Logger)
	return a, nil
}

// RunMigration moves any legacy flat-file data into the store.
func (a *App) RunMigration(ctx context.Context) (migrate.Report, error) {
	return a.Migrator.Run(ctx)
}

// Close releases resources in reverse construction order.
func (a *App) Close() error {
	var firstErr error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			firstErr = err
		}
	}
	if a.Sink != nil {
		a.Sink.Close()
	}
	return firstErr
}
