// Package session persists chat conversations. A conversation becomes a
// stored session only once a real exchange happened; after that every
// turn overwrites the whole session under the same id.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/store"
)

// maxTitleRunes bounds the derived session title.
const maxTitleRunes = 40

// Store is the slice of the record store the service needs.
type Store interface {
	Sessions(ctx context.Context) ([]store.ChatSession, error)
	GetSession(ctx context.Context, id string) (store.ChatSession, bool, error)
	PutSession(ctx context.Context, sess store.ChatSession) error
	DeleteSession(ctx context.Context, id string) error
	ClearSessions(ctx context.Context) error
}

// Service owns session persistence policy.
type Service struct {
	store  Store
	logger log.Logger
}

// NewService creates a Service.
func NewService(s Store, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Service{store: s, logger: logger.With("component", "session")}
}

// Save persists a conversation and returns its session id.
//
// A session containing only the initial greeting is not worth keeping:
// when messages has fewer than two entries, Save does nothing and
// returns id unchanged (possibly empty). On the first real save the id
// is assigned (UUIDv7) and the title derived from the first user
// message; subsequent saves reuse the id and fully overwrite the row
// with a refreshed timestamp.
func (s *Service) Save(ctx context.Context, id string, messages []store.ChatMessage) (string, error) {
	if len(messages) < 2 {
		return id, nil
	}

	if id == "" {
		newID, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generating session id: %w", err)
		}
		id = newID.String()
	}

	sess := store.ChatSession{
		ID:        id,
		Title:     deriveTitle(messages),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Messages:  messages,
	}
	if err := s.store.PutSession(ctx, sess); err != nil {
		return id, err
	}
	return id, nil
}

// List returns all sessions, newest first. Faults degrade to empty.
func (s *Service) List(ctx context.Context) []store.ChatSession {
	sessions, _ := s.store.Sessions(ctx)
	return sessions
}

// Get returns one session by id.
func (s *Service) Get(ctx context.Context, id string) (store.ChatSession, bool) {
	sess, ok, _ := s.store.GetSession(ctx, id)
	return sess, ok
}

// Delete removes one session.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteSession(ctx, id)
}

// PurgeAll removes every session.
func (s *Service) PurgeAll(ctx context.Context) error {
	return s.store.ClearSessions(ctx)
}

// deriveTitle takes the first user message's text, trimmed and truncated.
// Falls back to a fixed title for attachment-only conversations.
func deriveTitle(messages []store.ChatMessage) string {
	for _, m := range messages {
		if m.Sender != store.SenderUser {
			continue
		}
		title := strings.TrimSpace(m.Text)
		if title == "" {
			break
		}
		if utf8.RuneCountInString(title) > maxTitleRunes {
			runes := []rune(title)
			title = string(runes[:maxTitleRunes]) + "…"
		}
		return title
	}
	return "New conversation"
}
