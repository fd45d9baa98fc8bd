package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/koopa0/pocketexpert/internal/assistant"
	"github.com/koopa0/pocketexpert/internal/chat"
	"github.com/koopa0/pocketexpert/internal/finance"
	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/memory"
	"github.com/koopa0/pocketexpert/internal/session"
	"github.com/koopa0/pocketexpert/internal/store"
)

// fakePinger reports a configurable store health.
type fakePinger struct {
	err error
}

func (f *fakePinger) Ping() error { return f.err }

// fakeChat echoes a canned reply.
type fakeChat struct {
	reply    store.ChatMessage
	lastOpts chat.Options
	calls    int
}

func (f *fakeChat) Respond(_ context.Context, _ []store.ChatMessage, _ store.ChatMessage, opts chat.Options) store.ChatMessage {
	f.calls++
	f.lastOpts = opts
	return f.reply
}

// fakeInsights returns canned strings and records inputs.
type fakeInsights struct {
	suggestions string
	analysis    string
	result      *assistant.CompetitiveAnalysisResult
	sources     []store.GroundingSource
	template    string
	imageData   []byte
	imageErr    error
}

func (f *fakeInsights) CanvasSuggestions(context.Context, string, []store.CanvasItem) string {
	return f.suggestions
}

func (f *fakeInsights) AnalyzeFinancialModel(context.Context, store.FinancialInputs, finance.Projections) string {
	return f.analysis
}

func (f *fakeInsights) CompetitiveAnalysis(context.Context, string) (*assistant.CompetitiveAnalysisResult, []store.GroundingSource) {
	return f.result, f.sources
}

func (f *fakeInsights) GenerateTemplate(context.Context, string) string { return f.template }

func (f *fakeInsights) GenerateImage(context.Context, string, string) ([]byte, error) {
	return f.imageData, f.imageErr
}

// fakeDataStore is an in-memory DataStore.
type fakeDataStore struct {
	canvas    *store.CanvasState
	model     *store.FinancialModelState
	theme     string
	resets    int
	saveErr   error
	exportVal store.Export
}

func (f *fakeDataStore) Canvas(context.Context) (store.CanvasState, bool, error) {
	if f.canvas == nil {
		return store.CanvasState{}, false, nil
	}
	return *f.canvas, true, nil
}

func (f *fakeDataStore) SaveCanvas(_ context.Context, c store.CanvasState) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	c.ID = store.CanvasID
	f.canvas = &c
	return nil
}

func (f *fakeDataStore) FinancialModel(context.Context) (store.FinancialModelState, bool, error) {
	if f.model == nil {
		return store.FinancialModelState{}, false, nil
	}
	return *f.model, true, nil
}

func (f *fakeDataStore) SaveFinancialModel(_ context.Context, m store.FinancialModelState) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	m.ID = store.FinancialModelID
	f.model = &m
	return nil
}

func (f *fakeDataStore) Theme(context.Context) string {
	if f.theme == "" {
		return "light"
	}
	return f.theme
}

func (f *fakeDataStore) SetTheme(_ context.Context, theme string) error {
	f.theme = theme
	return nil
}

func (f *fakeDataStore) ExportAll(context.Context) store.Export { return f.exportVal }

func (f *fakeDataStore) ResetAll(context.Context) error {
	f.resets++
	f.canvas, f.model = nil, nil
	return nil
}

// fakeMemoryStore backs a real memory.Manager.
type fakeMemoryStore struct {
	memories []store.Memory
}

func (f *fakeMemoryStore) Memories(context.Context) ([]store.Memory, error) {
	return f.memories, nil
}

func (f *fakeMemoryStore) PutMemory(_ context.Context, m store.Memory) error {
	for i, ex := range f.memories {
		if ex.ID == m.ID {
			f.memories[i] = m
			return nil
		}
	}
	f.memories = append(f.memories, m)
	return nil
}

func (f *fakeMemoryStore) DeleteMemory(_ context.Context, id string) error {
	for i, ex := range f.memories {
		if ex.ID == id {
			f.memories = append(f.memories[:i], f.memories[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeMemoryStore) ClearMemories(context.Context) error {
	f.memories = nil
	return nil
}

// fakeSessionStore backs a real session.Service.
type fakeSessionStore struct {
	sessions map[string]store.ChatSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]store.ChatSession{}}
}

func (f *fakeSessionStore) Sessions(context.Context) ([]store.ChatSession, error) {
	out := make([]store.ChatSession, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSessionStore) GetSession(_ context.Context, id string) (store.ChatSession, bool, error) {
	s, ok := f.sessions[id]
	return s, ok, nil
}

func (f *fakeSessionStore) PutSession(_ context.Context, s store.ChatSession) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) ClearSessions(context.Context) error {
	f.sessions = map[string]store.ChatSession{}
	return nil
}

// harness bundles the fakes behind a ready test server.
type harness struct {
	pinger    *fakePinger
	chat      *fakeChat
	insights  *fakeInsights
	dataStore *fakeDataStore
	memStore  *fakeMemoryStore
	sessStore *fakeSessionStore
	server    *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		pinger:    &fakePinger{},
		chat:      &fakeChat{},
		insights:  &fakeInsights{},
		dataStore: &fakeDataStore{},
		memStore:  &fakeMemoryStore{},
		sessStore: newFakeSessionStore(),
	}

	logger := log.NewNop()
	srv := NewServer(Deps{
		Pinger:   h.pinger,
		Chat:     h.chat,
		Sessions: session.NewService(h.sessStore, logger),
		Memories: memory.NewManager(h.memStore, logger),
		Store:    h.dataStore,
		Insights: h.insights,
		Logger:   logger,
	})

	h.server = httptest.NewServer(srv.Handler())
	t.Cleanup(h.server.Close)
	return h
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t)

	resp, err := http.Get(h.server.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(h.server.URL + "/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/ready = %d, want 200", resp.StatusCode)
	}

	h.pinger.err = errors.New("database locked")
	resp, err = http.Get(h.server.URL + "/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("/ready with failing store = %d, want 503", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHarness(t)

	resp, err := http.Post(h.server.URL+"/api/export", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/export: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	handler := chain(panicky, recoveryMiddleware(log.NewNop()), loggingMiddleware(log.NewNop()))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
