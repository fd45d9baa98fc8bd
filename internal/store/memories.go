package store

import (
	"context"
	"database/sql"
	"errors"
)

// Memories returns all memory rows. On fault the slice is empty.
func (s *Store) Memories(ctx context.Context) ([]Memory, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content, type, created_at FROM memories")
	if err != nil {
		return nil, s.fail("memories.all", err)
	}
	defer rows.Close()

	var out []Memory
	for rows.Next() {
		var m Memory
		if err := rows.Scan(&m.ID, &m.Content, &m.Type, &m.CreatedAt); err != nil {
			return nil, s.fail("memories.all", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("memories.all", err)
	}
	return out, nil
}

// GetMemory fetches one memory by id. Absence is not a fault: it returns
// (zero, false, nil).
func (s *Store) GetMemory(ctx context.Context, id string) (Memory, bool, error) {
	var m Memory
	err := s.db.QueryRowContext(ctx,
		"SELECT id, content, type, created_at FROM memories WHERE id = ?", id).
		Scan(&m.ID, &m.Content, &m.Type, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Memory{}, false, nil
	}
	if err != nil {
		return Memory{}, false, s.fail("memories.get", err)
	}
	return m, true, nil
}

// PutMemory inserts or replaces a memory by primary key.
func (s *Store) PutMemory(ctx context.Context, m Memory) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (id, content, type, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET content = excluded.content,
		   type = excluded.type, created_at = excluded.created_at`,
		m.ID, m.Content, m.Type, m.CreatedAt)
	if err != nil {
		return s.fail("memories.put", err)
	}
	return nil
}

// BulkPutMemories upserts a batch inside one transaction so a migration
// pass is all-or-nothing per key.
func (s *Store) BulkPutMemories(ctx context.Context, memories []Memory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail("memories.bulkput", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO memories (id, content, type, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET content = excluded.content,
		   type = excluded.type, created_at = excluded.created_at`)
	if err != nil {
		return s.fail("memories.bulkput", err)
	}
	defer stmt.Close()

	for _, m := range memories {
		if _, err := stmt.ExecContext(ctx, m.ID, m.Content, m.Type, m.CreatedAt); err != nil {
			return s.fail("memories.bulkput", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return s.fail("memories.bulkput", err)
	}
	return nil
}

// DeleteMemory removes a memory by id. Deleting an absent id is a no-op.
func (s *Store) DeleteMemory(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM memories WHERE id = ?", id); err != nil {
		return s.fail("memories.delete", err)
	}
	return nil
}

// ClearMemories removes every memory row.
func (s *Store) ClearMemories(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM memories"); err != nil {
		return s.fail("memories.clear", err)
	}
	return nil
}
