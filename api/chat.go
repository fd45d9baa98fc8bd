package api

import (
	"encoding/json"
	"net/http"

	"github.com/koopa0/pocketexpert/internal/chat"
	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/session"
	"github.com/koopa0/pocketexpert/internal/store"
)

// MaxChatBodyBytes bounds a chat request. Image attachments arrive
// base64-encoded inside the JSON body.
const MaxChatBodyBytes = 16 << 20

// ChatHandler serves the conversational endpoint.
type ChatHandler struct {
	chat     ChatService
	sessions *session.Service
	logger   log.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(c ChatService, sessions *session.Service, logger log.Logger) *ChatHandler {
	return &ChatHandler{chat: c, sessions: sessions, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.respond)
}

// ChatRequest is one conversational turn. History holds the prior
// messages including the greeting; SessionID is empty for a fresh
// conversation and echoed back once assigned.
type ChatRequest struct {
	SessionID string              `json:"sessionId,omitempty"`
	History   []store.ChatMessage `json:"history"`
	Message   store.ChatMessage   `json:"message"`
	Options   ChatRequestOptions  `json:"options"`
}

// ChatRequestOptions toggle per-turn model behaviour.
type ChatRequestOptions struct {
	DeepThinking bool `json:"deepThinking"`
	ResearchMode bool `json:"researchMode"`
}

// ChatResponse carries the bot reply and the session id under which the
// conversation was stored.
type ChatResponse struct {
	SessionID string            `json:"sessionId,omitempty"`
	Message   store.ChatMessage `json:"message"`
}

// respond runs one turn and persists the grown conversation.
func (h *ChatHandler) respond(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxChatBodyBytes)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Message.Text == "" && req.Message.Attachment == nil {
		writeError(w, http.StatusBadRequest, "empty message", "message needs text or an attachment")
		return
	}
	req.Message.Sender = store.SenderUser

	reply := h.chat.Respond(r.Context(), req.History, req.Message, chat.Options{
		DeepThinking: req.Options.DeepThinking,
		ResearchMode: req.Options.ResearchMode,
	})

	conversation := append(append([]store.ChatMessage{}, req.History...), req.Message, reply)
	sessionID, err := h.sessions.Save(r.Context(), req.SessionID, conversation)
	if err != nil {
		// The reply is still useful; losing the save only costs history.
		h.logger.Error("failed to save session", "error", err)
		sessionID = req.SessionID
	}

	writeJSON(w, http.StatusOK, ChatResponse{SessionID: sessionID, Message: reply})
}
