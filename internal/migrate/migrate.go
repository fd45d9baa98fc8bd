// Package migrate moves legacy flat-storage data into the record store.
//
// The pass runs once per installation: four legacy keys (memories array,
// canvas object, financial-model inputs, theme string) are read, shape-
// validated, written to the record store, and deleted from legacy storage
// only after the write is confirmed. Each key is handled independently;
// one malformed payload never blocks the others.
//
// Done-flag contract: the migration-complete flag is set only when every
// key that was present migrated successfully. A failed key leaves the
// flag unset so the next startup retries it; keys already migrated were
// deleted as they landed, and record-store writes are keyed upserts, so a
// retry pass cannot duplicate rows.
package migrate

import (
	"context"
	"fmt"

	"github.com/gofrs/flock"

	"github.com/koopa0/pocketexpert/internal/legacy"
	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/observability"
	"github.com/koopa0/pocketexpert/internal/store"
)

// RecordStore is the slice of the record store the migration writes to.
type RecordStore interface {
	BulkPutMemories(ctx context.Context, memories []store.Memory) error
	SaveCanvas(ctx context.Context, c store.CanvasState) error
	SaveFinancialModel(ctx context.Context, f store.FinancialModelState) error
	SetTheme(ctx context.Context, theme string) error
}

// KV is the slice of legacy storage the migration reads and deletes.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Report summarizes one migration pass.
type Report struct {
	// AlreadyDone is true when the flag was set and nothing ran.
	AlreadyDone bool
	// Migrated lists legacy keys moved into the record store this pass.
	Migrated []string
	// Failed lists legacy keys whose payload could not be migrated; their
	// data stays in legacy storage for the next attempt.
	Failed []string
}

// Runner performs the one-shot legacy migration.
type Runner struct {
	kv     KV
	dst    RecordStore
	sink   *observability.Sink
	logger log.Logger

	// lockPath guards against two processes migrating concurrently.
	// Empty disables locking (tests).
	lockPath string
}

// New creates a Runner. sink may be nil.
func New(kv KV, dst RecordStore, lockPath string, sink *observability.Sink, logger log.Logger) *Runner {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{
		kv:       kv,
		dst:      dst,
		sink:     sink,
		logger:   logger.With("component", "migrate"),
		lockPath: lockPath,
	}
}

// Run executes the migration pass. Idempotent: once the done flag is set,
// Run only checks the flag and returns. The returned error covers only
// infrastructure problems (lock, unreadable legacy storage); per-key
// payload faults are reported in Report.Failed, not as errors.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	if r.lockPath != "" {
		fl := flock.New(r.lockPath)
		if err := fl.Lock(); err != nil {
			return Report{}, fmt.Errorf("acquiring migration lock: %w", err)
		}
		defer func() { _ = fl.Unlock() }()
	}

	done, ok, err := r.kv.Get(legacy.KeyMigrated)
	if err != nil {
		return Report{}, fmt.Errorf("reading migration flag: %w", err)
	}
	if ok && done == "true" {
		return Report{AlreadyDone: true}, nil
	}

	var report Report
	steps := []struct {
		key string
		fn  func(context.Context, string) error
	}{
		{legacy.KeyMemories, r.migrateMemories},
		{legacy.KeyCanvas, r.migrateCanvas},
		{legacy.KeyModelInputs, r.migrateFinancialInputs},
		{legacy.KeyTheme, r.migrateTheme},
	}

	for _, step := range steps {
		raw, present, err := r.kv.Get(step.key)
		if err != nil {
			return report, fmt.Errorf("reading legacy key %q: %w", step.key, err)
		}
		if !present {
			continue
		}

		if err := step.fn(ctx, raw); err != nil {
			// The key's data stays in legacy storage for the next attempt.
			r.logger.Warn("legacy key not migrated", "key", step.key, "error", err)
			if r.sink != nil {
				r.sink.LogError(err, "context", "migrate", "key", step.key)
			}
			report.Failed = append(report.Failed, step.key)
			continue
		}

		if err := r.kv.Delete(step.key); err != nil {
			return report, fmt.Errorf("deleting legacy key %q: %w", step.key, err)
		}
		report.Migrated = append(report.Migrated, step.key)
		r.logger.Info("legacy key migrated", "key", step.key)
	}

	if len(report.Failed) == 0 {
		if err := r.kv.Set(legacy.KeyMigrated, "true"); err != nil {
			return report, fmt.Errorf("setting migration flag: %w", err)
		}
		r.logger.Info("legacy migration complete", "migrated", len(report.Migrated))
	} else {
		r.logger.Warn("legacy migration incomplete, will retry on next start",
			"migrated", len(report.Migrated), "failed", len(report.Failed))
	}

	return report, nil
}

func (r *Runner) migrateMemories(ctx context.Context, raw string) error {
	memories, err := parseMemories(raw)
	if err != nil {
		return err
	}
	if len(memories) == 0 {
		// Nothing to move; the key is still consumed.
		return nil
	}
	if err := r.dst.BulkPutMemories(ctx, memories); err != nil {
		return fmt.Errorf("writing memories: %w", err)
	}
	return nil
}

func (r *Runner) migrateCanvas(ctx context.Context, raw string) error {
	canvas, err := parseCanvas(raw)
	if err != nil {
		return err
	}
	if err := r.dst.SaveCanvas(ctx, canvas); err != nil {
		return fmt.Errorf("writing canvas: %w", err)
	}
	return nil
}

func (r *Runner) migrateFinancialInputs(ctx context.Context, raw string) error {
	inputs, err := parseFinancialInputs(raw)
	if err != nil {
		return err
	}
	model := store.FinancialModelState{ID: store.FinancialModelID, Inputs: inputs}
	if err := r.dst.SaveFinancialModel(ctx, model); err != nil {
		return fmt.Errorf("writing financial model: %w", err)
	}
	return nil
}

func (r *Runner) migrateTheme(ctx context.Context, raw string) error {
	theme, err := parseTheme(raw)
	if err != nil {
		return err
	}
	if err := r.dst.SetTheme(ctx, theme); err != nil {
		return fmt.Errorf("writing theme: %w", err)
	}
	return nil
}
