package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// Sessions returns all chat sessions, most recent first (indexed scan on
// timestamp).
func (s *Store) Sessions(ctx context.Context) ([]ChatSession, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, timestamp, messages FROM chat_sessions ORDER BY timestamp DESC")
	if err != nil {
		return nil, s.fail("sessions.all", err)
	}
	defer rows.Close()

	var out []ChatSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, s.fail("sessions.all", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("sessions.all", err)
	}
	return out, nil
}

// GetSession fetches one session by id, or (zero, false, nil) when absent.
func (s *Store) GetSession(ctx context.Context, id string) (ChatSession, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, timestamp, messages FROM chat_sessions WHERE id = ?", id)

	var (
		sess     ChatSession
		messages string
	)
	err := row.Scan(&sess.ID, &sess.Title, &sess.Timestamp, &messages)
	if errors.Is(err, sql.ErrNoRows) {
		return ChatSession{}, false, nil
	}
	if err != nil {
		return ChatSession{}, false, s.fail("sessions.get", err)
	}
	if err := json.Unmarshal([]byte(messages), &sess.Messages); err != nil {
		return ChatSession{}, false, s.fail("sessions.get", err)
	}
	return sess, true, nil
}

// PutSession inserts or fully replaces a session by id. Sessions are
// always written whole; every turn overwrites the message list.
func (s *Store) PutSession(ctx context.Context, sess ChatSession) error {
	messages, err := json.Marshal(sess.Messages)
	if err != nil {
		return s.fail("sessions.put", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, title, timestamp, messages) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET title = excluded.title,
		   timestamp = excluded.timestamp, messages = excluded.messages`,
		sess.ID, sess.Title, sess.Timestamp, string(messages))
	if err != nil {
		return s.fail("sessions.put", err)
	}
	return nil
}

// DeleteSession removes one session by id.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chat_sessions WHERE id = ?", id); err != nil {
		return s.fail("sessions.delete", err)
	}
	return nil
}

// ClearSessions removes every session.
func (s *Store) ClearSessions(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chat_sessions"); err != nil {
		return s.fail("sessions.clear", err)
	}
	return nil
}

func scanSession(rows *sql.Rows) (ChatSession, error) {
	var (
		sess     ChatSession
		messages string
	)
	if err := rows.Scan(&sess.ID, &sess.Title, &sess.Timestamp, &messages); err != nil {
		return ChatSession{}, err
	}
	if err := json.Unmarshal([]byte(messages), &sess.Messages); err != nil {
		return ChatSession{}, err
	}
	return sess, nil
}
