// Package memory provides the domain service over persisted memories:
// identifier and timestamp assignment, updates, and the filtered recency
// view injected into assistant requests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/store"
)

// DefaultContextCount is how many memories RecentForContext returns when
// the caller passes a non-positive count.
const DefaultContextCount = 5

// Store is the slice of the record store the manager needs.
type Store interface {
	Memories(ctx context.Context) ([]store.Memory, error)
	PutMemory(ctx context.Context, m store.Memory) error
	DeleteMemory(ctx context.Context, id string) error
	ClearMemories(ctx context.Context) error
}

// Manager owns memory lifecycle. Updates are read-modify-write without
// versioning: concurrent updates to the same id race and the last write
// wins, which is acceptable for a single-user local app.
type Manager struct {
	store  Store
	logger log.Logger
}

// NewManager creates a Manager.
func NewManager(s Store, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager{store: s, logger: logger.With("component", "memory")}
}

// All returns every stored memory. Storage faults degrade to an empty
// slice (already logged at the store boundary).
func (m *Manager) All(ctx context.Context) []store.Memory {
	memories, _ := m.store.Memories(ctx)
	return memories
}

// Add creates and persists a new memory. The id is a UUIDv7, time-ordered
// with a random suffix so creation order survives a sort, and CreatedAt
// is the RFC 3339 instant of the call.
func (m *Manager) Add(ctx context.Context, content string, typ store.MemoryType) (store.Memory, error) {
	if content == "" {
		return store.Memory{}, fmt.Errorf("memory content is empty")
	}
	if !store.ValidMemoryType(typ) {
		return store.Memory{}, fmt.Errorf("unknown memory type %q", typ)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return store.Memory{}, fmt.Errorf("generating memory id: %w", err)
	}

	mem := store.Memory{
		ID:        id.String(),
		Content:   content,
		Type:      typ,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := m.store.PutMemory(ctx, mem); err != nil {
		return store.Memory{}, err
	}
	return mem, nil
}

// Update merges new content and type onto the existing record, keeping
// id and createdAt. Updating an id that does not exist is a no-op: no
// store write, no error.
func (m *Manager) Update(ctx context.Context, id, content string, typ store.MemoryType) error {
	if !store.ValidMemoryType(typ) {
		return fmt.Errorf("unknown memory type %q", typ)
	}

	memories, err := m.store.Memories(ctx)
	if err != nil {
		return err
	}
	for _, existing := range memories {
		if existing.ID != id {
			continue
		}
		existing.Content = content
		existing.Type = typ
		return m.store.PutMemory(ctx, existing)
	}
	m.logger.Debug("update for unknown memory id ignored", "id", id)
	return nil
}

// Delete removes one memory.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.DeleteMemory(ctx, id)
}

// PurgeAll removes every memory.
func (m *Manager) PurgeAll(ctx context.Context) error {
	return m.store.ClearMemories(ctx)
}

// RecentForContext returns up to count memories for injection into the
// assistant's system instruction: only the preference-like types (Goals,
// Preferences, Context), newest first. Decisions and History are
// deliberately excluded from automatic injection.
func (m *Manager) RecentForContext(ctx context.Context, count int) []store.Memory {
	if count <= 0 {
		count = DefaultContextCount
	}

	all, _ := m.store.Memories(ctx)
	filtered := all[:0:0]
	for _, mem := range all {
		switch mem.Type {
		case store.MemoryGoals, store.MemoryPreferences, store.MemoryContext:
			filtered = append(filtered, mem)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return parseCreatedAt(filtered[i].CreatedAt).After(parseCreatedAt(filtered[j].CreatedAt))
	})

	if len(filtered) > count {
		filtered = filtered[:count]
	}
	return filtered
}

// parseCreatedAt parses an RFC 3339 timestamp, mapping malformed values
// to the zero time so they sort last.
func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
