package api

import (
	"net/http"

	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/session"
)

// SessionHandler serves the saved-conversation endpoints.
type SessionHandler struct {
	sessions *session.Service
	logger   log.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(s *session.Service, logger log.Logger) *SessionHandler {
	return &SessionHandler{sessions: s, logger: logger}
}

// RegisterRoutes registers session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions", h.list)
	mux.HandleFunc("GET /api/sessions/{id}", h.get)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.delete)
	mux.HandleFunc("DELETE /api/sessions", h.purge)
}

// list returns all sessions, newest first. Messages are included; the
// dataset is a single user's local history and stays small.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions := h.sessions.List(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(r.Context(), r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found", "")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete session", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) purge(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.PurgeAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear sessions", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
