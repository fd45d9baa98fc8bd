package api

import (
	"encoding/json"
	"net/http"

	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/memory"
	"github.com/koopa0/pocketexpert/internal/store"
)

// MaxMemoryContentLength bounds a single memory's content.
const MaxMemoryContentLength = 4000

// MemoryHandler serves memory CRUD endpoints.
type MemoryHandler struct {
	memories *memory.Manager
	logger   log.Logger
}

// NewMemoryHandler creates a memory handler.
func NewMemoryHandler(m *memory.Manager, logger log.Logger) *MemoryHandler {
	return &MemoryHandler{memories: m, logger: logger}
}

// RegisterRoutes registers memory routes on the given mux.
func (h *MemoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/memories", h.list)
	mux.HandleFunc("POST /api/memories", h.create)
	mux.HandleFunc("PUT /api/memories/{id}", h.update)
	mux.HandleFunc("DELETE /api/memories/{id}", h.delete)
	mux.HandleFunc("DELETE /api/memories", h.purge)
}

// MemoryRequest is the body for creating or updating a memory.
type MemoryRequest struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}

func (h *MemoryHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"memories": h.memories.All(r.Context())})
}

func (h *MemoryHandler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	mem, err := h.memories.Add(r.Context(), req.Content, store.MemoryType(req.Type))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid memory", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, mem)
}

func (h *MemoryHandler) update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	if err := h.memories.Update(r.Context(), r.PathValue("id"), req.Content, store.MemoryType(req.Type)); err != nil {
		writeError(w, http.StatusBadRequest, "invalid memory", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MemoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.memories.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete memory", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MemoryHandler) purge(w http.ResponseWriter, r *http.Request) {
	if err := h.memories.PurgeAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear memories", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MemoryHandler) decode(w http.ResponseWriter, r *http.Request) (MemoryRequest, bool) {
	var req MemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return req, false
	}
	if len(req.Content) > MaxMemoryContentLength {
		writeError(w, http.StatusBadRequest, "content too long", "")
		return req, false
	}
	return req, true
}
