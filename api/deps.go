package api

import (
	"context"

	"github.com/koopa0/pocketexpert/internal/assistant"
	"github.com/koopa0/pocketexpert/internal/chat"
	"github.com/koopa0/pocketexpert/internal/finance"
	"github.com/koopa0/pocketexpert/internal/store"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping() error
}

// ChatService runs one conversational turn.
type ChatService interface {
	Respond(ctx context.Context, history []store.ChatMessage, userMsg store.ChatMessage, opts chat.Options) store.ChatMessage
}

// Insights groups the one-shot AI operations outside the chat flow.
type Insights interface {
	CanvasSuggestions(ctx context.Context, name string, items []store.CanvasItem) string
	AnalyzeFinancialModel(ctx context.Context, inputs store.FinancialInputs, projections finance.Projections) string
	CompetitiveAnalysis(ctx context.Context, query string) (*assistant.CompetitiveAnalysisResult, []store.GroundingSource)
	GenerateTemplate(ctx context.Context, purpose string) string
	GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error)
}

// DataStore is the persistence surface the handlers read and write.
type DataStore interface {
	Canvas(ctx context.Context) (store.CanvasState, bool, error)
	SaveCanvas(ctx context.Context, c store.CanvasState) error
	FinancialModel(ctx context.Context) (store.FinancialModelState, bool, error)
	SaveFinancialModel(ctx context.Context, f store.FinancialModelState) error
	Theme(ctx context.Context) string
	SetTheme(ctx context.Context, theme string) error
	ExportAll(ctx context.Context) store.Export
	ResetAll(ctx context.Context) error
}
