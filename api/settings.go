package api

import (
	"encoding/json"
	"net/http"

	"github.com/koopa0/pocketexpert/internal/log"
)

// SettingsHandler serves theme, export, and reset.
type SettingsHandler struct {
	store  DataStore
	logger log.Logger
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(s DataStore, logger log.Logger) *SettingsHandler {
	return &SettingsHandler{store: s, logger: logger}
}

// RegisterRoutes registers settings routes on the given mux.
func (h *SettingsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/settings/theme", h.getTheme)
	mux.HandleFunc("PUT /api/settings/theme", h.putTheme)
	mux.HandleFunc("GET /api/export", h.export)
	mux.HandleFunc("POST /api/reset", h.reset)
}

// ThemeBody is the theme get/put payload.
type ThemeBody struct {
	Theme string `json:"theme"`
}

func (h *SettingsHandler) getTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ThemeBody{Theme: h.store.Theme(r.Context())})
}

func (h *SettingsHandler) putTheme(w http.ResponseWriter, r *http.Request) {
	var body ThemeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if body.Theme != "light" && body.Theme != "dark" {
		writeError(w, http.StatusBadRequest, "invalid theme", "theme must be light or dark")
		return
	}
	if err := h.store.SetTheme(r.Context(), body.Theme); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save theme", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// export returns the full data snapshot for backup.
func (h *SettingsHandler) export(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ExportAll(r.Context()))
}

// reset clears all user data. Settings survive so the UI keeps its
// theme after the wipe.
func (h *SettingsHandler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reset data", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
