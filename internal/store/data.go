package store

import "context"

// Export is the full-database snapshot produced by ExportAll. Shapes match
// what the UI writes back on import.
type Export struct {
	Memories       []Memory             `json:"memories"`
	Canvas         *CanvasState         `json:"canvas"`
	FinancialModel *FinancialModelState `json:"financialModel"`
	Settings       []Setting            `json:"settings"`
	ChatHistory    []ChatSession        `json:"chatHistory"`
}

// ExportAll collects the full contents of every table. Faults degrade per
// table: a failed read leaves that section empty rather than aborting the
// export.
func (s *Store) ExportAll(ctx context.Context) Export {
	var e Export

	e.Memories, _ = s.Memories(ctx)
	if canvas, ok, _ := s.Canvas(ctx); ok {
		e.Canvas = &canvas
	}
	if model, ok, _ := s.FinancialModel(ctx); ok {
		e.FinancialModel = &model
	}
	e.Settings, _ = s.Settings(ctx)
	e.ChatHistory, _ = s.Sessions(ctx)

	return e
}

// ResetAll clears memories, canvas, financial model and chat history.
// Settings are deliberately preserved so the theme survives a reset.
func (s *Store) ResetAll(ctx context.Context) error {
	var firstErr error
	for _, clear := range []func(context.Context) error{
		s.ClearMemories,
		s.ClearCanvas,
		s.ClearFinancialModel,
		s.ClearSessions,
	} {
		if err := clear(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
