package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/koopa0/pocketexpert/internal/assistant"
	"github.com/koopa0/pocketexpert/internal/store"
)

func do(t *testing.T, method, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestMemories_CRUD(t *testing.T) {
	h := newHarness(t)
	base := h.server.URL + "/api/memories"

	created := decode[store.Memory](t, postJSON(t, base, MemoryRequest{
		Content: "Ships in Q4",
		Type:    "Decisions",
	}))
	if created.ID == "" || created.Type != store.MemoryDecisions {
		t.Fatalf("created = %+v", created)
	}

	listed := decode[map[string][]store.Memory](t, do(t, http.MethodGet, base))
	if len(listed["memories"]) != 1 {
		t.Fatalf("listed = %+v", listed)
	}

	resp := putJSON(t, base+"/"+created.ID, MemoryRequest{Content: "Ships in Q1", Type: "Decisions"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	if h.memStore.memories[0].Content != "Ships in Q1" {
		t.Errorf("content after update = %q", h.memStore.memories[0].Content)
	}

	resp = do(t, http.MethodDelete, base+"/"+created.ID)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || len(h.memStore.memories) != 0 {
		t.Errorf("delete status = %d, remaining = %d", resp.StatusCode, len(h.memStore.memories))
	}
}

func TestMemories_RejectsInvalid(t *testing.T) {
	h := newHarness(t)

	resp := postJSON(t, h.server.URL+"/api/memories", MemoryRequest{Content: "", Type: "Goals"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty content status = %d, want 400", resp.StatusCode)
	}

	resp = postJSON(t, h.server.URL+"/api/memories", MemoryRequest{Content: "x", Type: "Dreams"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown type status = %d, want 400", resp.StatusCode)
	}
}

func TestCanvas_RoundTrip(t *testing.T) {
	h := newHarness(t)
	base := h.server.URL + "/api/canvas"

	resp := do(t, http.MethodGet, base)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("empty canvas status = %d, want 404", resp.StatusCode)
	}

	resp = putJSON(t, base, store.CanvasState{
		Name:  "Acme",
		Items: []store.CanvasItem{{ID: "problem", Title: "Problem", Content: "x"}},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("put status = %d", resp.StatusCode)
	}

	got := decode[store.CanvasState](t, do(t, http.MethodGet, base))
	if got.ID != store.CanvasID || got.Name != "Acme" || len(got.Items) != 1 {
		t.Errorf("canvas = %+v", got)
	}
}

func TestFinancialModel_Projections(t *testing.T) {
	h := newHarness(t)

	resp := putJSON(t, h.server.URL+"/api/financial-model", store.FinancialModelState{
		Inputs: store.FinancialInputs{InitialInvestment: 50000, Salaries: 10000},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("put status = %d", resp.StatusCode)
	}

	// An empty body falls back to the saved model.
	raw, err := http.Post(h.server.URL+"/api/financial-model/projections", "application/json", nil)
	if err != nil {
		t.Fatalf("POST projections: %v", err)
	}
	got := decode[map[string]any](t, raw)
	if got["kpiData"] == nil {
		t.Errorf("projections missing kpiData: %v", got)
	}
}

func TestInsights_RequireSavedState(t *testing.T) {
	h := newHarness(t)

	resp := postJSON(t, h.server.URL+"/api/canvas/suggestions", map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("suggestions without canvas = %d, want 404", resp.StatusCode)
	}

	resp = postJSON(t, h.server.URL+"/api/financial-model/analysis", map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("analysis without model = %d, want 404", resp.StatusCode)
	}
}

func TestCompetitiveAnalysis(t *testing.T) {
	h := newHarness(t)
	h.insights.result = &assistant.CompetitiveAnalysisResult{
		KeyPlayers:   []assistant.KeyPlayer{{Name: "BigCo"}},
		MarketTrends: []string{"consolidation"},
	}
	h.insights.sources = []store.GroundingSource{{Title: "Report", URI: "https://example.com"}}

	got := decode[map[string]any](t, postJSON(t, h.server.URL+"/api/competitive-analysis",
		CompetitiveAnalysisRequest{Query: "meal kit delivery"}))
	if got["result"] == nil || got["sources"] == nil {
		t.Errorf("response = %v", got)
	}

	resp := postJSON(t, h.server.URL+"/api/competitive-analysis", CompetitiveAnalysisRequest{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query status = %d, want 400", resp.StatusCode)
	}
}

func TestGenerateImage_SurfacesFailure(t *testing.T) {
	h := newHarness(t)
	h.insights.imageErr = errors.New("image generation failed: quota exceeded")

	resp := postJSON(t, h.server.URL+"/api/images", ImageRequest{Prompt: "a lighthouse"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	got := decode[ErrorResponse](t, resp)
	if got.Message == "" {
		t.Error("error message not surfaced to client")
	}
}

func TestGenerateImage_ReturnsBase64(t *testing.T) {
	h := newHarness(t)
	h.insights.imageData = []byte{0xFF, 0xD8, 0xFF}

	got := decode[map[string]string](t, postJSON(t, h.server.URL+"/api/images",
		ImageRequest{Prompt: "a lighthouse", AspectRatio: "16:9"}))
	if got["mimeType"] != "image/jpeg" {
		t.Errorf("mimeType = %q", got["mimeType"])
	}
	data, err := base64.StdEncoding.DecodeString(got["data"])
	if err != nil || len(data) != 3 {
		t.Errorf("data = %q, decode err %v", got["data"], err)
	}
}

func TestThemeEndpoints(t *testing.T) {
	h := newHarness(t)
	base := h.server.URL + "/api/settings/theme"

	got := decode[ThemeBody](t, do(t, http.MethodGet, base))
	if got.Theme != "light" {
		t.Errorf("default theme = %q, want light", got.Theme)
	}

	resp := putJSON(t, base, ThemeBody{Theme: "dark"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("put status = %d", resp.StatusCode)
	}

	resp = putJSON(t, base, ThemeBody{Theme: "blue"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid theme status = %d, want 400", resp.StatusCode)
	}

	got = decode[ThemeBody](t, do(t, http.MethodGet, base))
	if got.Theme != "dark" {
		t.Errorf("theme after put = %q, want dark", got.Theme)
	}
}

func TestReset(t *testing.T) {
	h := newHarness(t)
	h.dataStore.canvas = &store.CanvasState{ID: store.CanvasID, Name: "Acme"}

	resp := postJSON(t, h.server.URL+"/api/reset", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if h.dataStore.resets != 1 || h.dataStore.canvas != nil {
		t.Errorf("reset not applied: resets=%d", h.dataStore.resets)
	}
}

func TestSessions_Endpoints(t *testing.T) {
	h := newHarness(t)
	h.sessStore.sessions["s1"] = store.ChatSession{
		ID: "s1", Title: "Pricing", Timestamp: "2026-02-01T00:00:00Z",
		Messages: []store.ChatMessage{{Sender: store.SenderBot, Text: "Hello!"}},
	}

	got := decode[map[string]any](t, do(t, http.MethodGet, h.server.URL+"/api/sessions"))
	if got["total"].(float64) != 1 {
		t.Errorf("total = %v", got["total"])
	}

	sess := decode[store.ChatSession](t, do(t, http.MethodGet, h.server.URL+"/api/sessions/s1"))
	if sess.Title != "Pricing" {
		t.Errorf("session = %+v", sess)
	}

	resp := do(t, http.MethodGet, h.server.URL+"/api/sessions/unknown")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown session status = %d, want 404", resp.StatusCode)
	}

	resp = do(t, http.MethodDelete, h.server.URL+"/api/sessions/s1")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || len(h.sessStore.sessions) != 0 {
		t.Errorf("delete status = %d, remaining = %d", resp.StatusCode, len(h.sessStore.sessions))
	}
}
