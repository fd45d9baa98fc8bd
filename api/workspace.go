package api

import (
	"encoding/json"
	"net/http"

	"github.com/koopa0/pocketexpert/internal/finance"
	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/store"
)

// WorkspaceHandler serves the canvas and financial-model state.
type WorkspaceHandler struct {
	store  DataStore
	logger log.Logger
}

// NewWorkspaceHandler creates a workspace handler.
func NewWorkspaceHandler(s DataStore, logger log.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{store: s, logger: logger}
}

// RegisterRoutes registers workspace routes on the given mux.
func (h *WorkspaceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/canvas", h.getCanvas)
	mux.HandleFunc("PUT /api/canvas", h.putCanvas)
	mux.HandleFunc("GET /api/financial-model", h.getFinancialModel)
	mux.HandleFunc("PUT /api/financial-model", h.putFinancialModel)
	mux.HandleFunc("POST /api/financial-model/projections", h.project)
}

// getCanvas returns the canvas singleton, or 404 before the first save.
func (h *WorkspaceHandler) getCanvas(w http.ResponseWriter, r *http.Request) {
	canvas, ok, err := h.store.Canvas(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load canvas", "")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no canvas saved", "")
		return
	}
	writeJSON(w, http.StatusOK, canvas)
}

// putCanvas upserts the canvas singleton. The stored id is fixed
// regardless of what the body carries.
func (h *WorkspaceHandler) putCanvas(w http.ResponseWriter, r *http.Request) {
	var canvas store.CanvasState
	if err := json.NewDecoder(r.Body).Decode(&canvas); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.store.SaveCanvas(r.Context(), canvas); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save canvas", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorkspaceHandler) getFinancialModel(w http.ResponseWriter, r *http.Request) {
	model, ok, err := h.store.FinancialModel(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load financial model", "")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no financial model saved", "")
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (h *WorkspaceHandler) putFinancialModel(w http.ResponseWriter, r *http.Request) {
	var model store.FinancialModelState
	if err := json.NewDecoder(r.Body).Decode(&model); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.store.SaveFinancialModel(r.Context(), model); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save financial model", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// project runs the monthly simulation over the body's inputs, falling
// back to the saved model when the body is empty.
func (h *WorkspaceHandler) project(w http.ResponseWriter, r *http.Request) {
	var inputs store.FinancialInputs
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		saved, ok, loadErr := h.store.FinancialModel(r.Context())
		if loadErr != nil || !ok {
			writeError(w, http.StatusBadRequest, "invalid request body", "no inputs given and no saved model")
			return
		}
		inputs = saved.Inputs
	}
	writeJSON(w, http.StatusOK, finance.Project(inputs))
}
