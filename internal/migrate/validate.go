package migrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/koopa0/pocketexpert/internal/store"
)

// Shape-validation errors for legacy payloads. Each legacy key has an
// explicit validator returning either a typed value or one of these,
// wrapped with detail.
var (
	ErrBadMemories = errors.New("malformed legacy memories payload")
	ErrBadCanvas   = errors.New("malformed legacy canvas payload")
	ErrBadInputs   = errors.New("malformed legacy model inputs payload")
	ErrBadTheme    = errors.New("malformed legacy theme value")
)

// parseMemories validates the legacy memories array. Every element must
// carry an id, content, one of the five known types, and a parseable
// RFC 3339 timestamp; one bad element fails the whole key so a partial
// array is never silently half-migrated.
func parseMemories(raw string) ([]store.Memory, error) {
	var memories []store.Memory
	if err := json.Unmarshal([]byte(raw), &memories); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMemories, err)
	}
	for i, m := range memories {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: element %d has no id", ErrBadMemories, i)
		}
		if m.Content == "" {
			return nil, fmt.Errorf("%w: element %d has no content", ErrBadMemories, i)
		}
		if !store.ValidMemoryType(m.Type) {
			return nil, fmt.Errorf("%w: element %d has unknown type %q", ErrBadMemories, i, m.Type)
		}
		if _, err := time.Parse(time.RFC3339, m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: element %d has bad createdAt %q", ErrBadMemories, i, m.CreatedAt)
		}
	}
	return memories, nil
}

// legacyCanvas mirrors the legacy canvas object, which has no id field.
type legacyCanvas struct {
	Name  *string            `json:"name"`
	Items []store.CanvasItem `json:"items"`
}

// parseCanvas validates the legacy canvas object: name and items must
// both be present.
func parseCanvas(raw string) (store.CanvasState, error) {
	var c legacyCanvas
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return store.CanvasState{}, fmt.Errorf("%w: %v", ErrBadCanvas, err)
	}
	if c.Name == nil {
		return store.CanvasState{}, fmt.Errorf("%w: missing name", ErrBadCanvas)
	}
	if c.Items == nil {
		return store.CanvasState{}, fmt.Errorf("%w: missing items", ErrBadCanvas)
	}
	return store.CanvasState{ID: store.CanvasID, Name: *c.Name, Items: c.Items}, nil
}

// parseFinancialInputs validates the legacy model-inputs object: it must
// be a JSON object; unknown fields are dropped, missing ones zero.
func parseFinancialInputs(raw string) (store.FinancialInputs, error) {
	// Reject non-objects (the legacy store held raw JSON strings, so
	// "null" or a bare number must not slip through Unmarshal).
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil || probe == nil {
		return store.FinancialInputs{}, fmt.Errorf("%w: not an object", ErrBadInputs)
	}

	var inputs store.FinancialInputs
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return store.FinancialInputs{}, fmt.Errorf("%w: %v", ErrBadInputs, err)
	}
	return inputs, nil
}

// parseTheme validates the legacy theme string. The value was stored
// bare (not JSON-encoded) by the old releases.
func parseTheme(raw string) (string, error) {
	if raw == "light" || raw == "dark" {
		return raw, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadTheme, raw)
}
