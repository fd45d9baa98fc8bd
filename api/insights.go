package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/koopa0/pocketexpert/internal/finance"
	"github.com/koopa0/pocketexpert/internal/log"
)

// InsightHandler serves the one-shot AI operations: canvas review,
// financial analysis, competitive research, template and image
// generation.
type InsightHandler struct {
	insights Insights
	store    DataStore
	logger   log.Logger
}

// NewInsightHandler creates an insight handler.
func NewInsightHandler(i Insights, s DataStore, logger log.Logger) *InsightHandler {
	return &InsightHandler{insights: i, store: s, logger: logger}
}

// RegisterRoutes registers insight routes on the given mux.
func (h *InsightHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/canvas/suggestions", h.canvasSuggestions)
	mux.HandleFunc("POST /api/financial-model/analysis", h.financialAnalysis)
	mux.HandleFunc("POST /api/competitive-analysis", h.competitiveAnalysis)
	mux.HandleFunc("POST /api/templates", h.generateTemplate)
	mux.HandleFunc("POST /api/images", h.generateImage)
}

// canvasSuggestions reviews the saved canvas. There is nothing to
// review before the first save.
func (h *InsightHandler) canvasSuggestions(w http.ResponseWriter, r *http.Request) {
	canvas, ok, err := h.store.Canvas(r.Context())
	if err != nil || !ok {
		writeError(w, http.StatusNotFound, "no canvas saved", "save the canvas before requesting suggestions")
		return
	}

	suggestions := h.insights.CanvasSuggestions(r.Context(), canvas.Name, canvas.Items)
	writeJSON(w, http.StatusOK, map[string]string{"suggestions": suggestions})
}

// financialAnalysis simulates the saved model and asks for a review.
func (h *InsightHandler) financialAnalysis(w http.ResponseWriter, r *http.Request) {
	model, ok, err := h.store.FinancialModel(r.Context())
	if err != nil || !ok {
		writeError(w, http.StatusNotFound, "no financial model saved", "save the model before requesting analysis")
		return
	}

	projections := finance.Project(model.Inputs)
	analysis := h.insights.AnalyzeFinancialModel(r.Context(), model.Inputs, projections)
	writeJSON(w, http.StatusOK, map[string]any{
		"analysis":    analysis,
		"projections": projections,
	})
}

// CompetitiveAnalysisRequest names the market to research.
type CompetitiveAnalysisRequest struct {
	Query string `json:"query"`
}

// competitiveAnalysis returns the structured report with its sources.
// A nil result with sources means the model's answer did not parse; the
// client shows the sources and an error note.
func (h *InsightHandler) competitiveAnalysis(w http.ResponseWriter, r *http.Request) {
	var req CompetitiveAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "missing query", "")
		return
	}

	result, sources := h.insights.CompetitiveAnalysis(r.Context(), req.Query)
	writeJSON(w, http.StatusOK, map[string]any{
		"result":  result,
		"sources": sources,
	})
}

// TemplateRequest describes the template to generate.
type TemplateRequest struct {
	Prompt string `json:"prompt"`
}

func (h *InsightHandler) generateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "missing prompt", "")
		return
	}

	template := h.insights.GenerateTemplate(r.Context(), req.Prompt)
	writeJSON(w, http.StatusOK, map[string]string{"template": template})
}

// ImageRequest describes the image to generate.
type ImageRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
}

// generateImage is the one endpoint that surfaces the underlying
// failure: a 502 carries the error message for the client to display.
func (h *InsightHandler) generateImage(w http.ResponseWriter, r *http.Request) {
	var req ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "missing prompt", "")
		return
	}
	if req.AspectRatio == "" {
		req.AspectRatio = "1:1"
	}

	data, err := h.insights.GenerateImage(r.Context(), req.Prompt, req.AspectRatio)
	if err != nil {
		h.logger.Error("image generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "image generation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"mimeType": "image/jpeg",
		"data":     base64.StdEncoding.EncodeToString(data),
	})
}
