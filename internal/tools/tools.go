// Package tools declares the functions offered to the model and
// dispatches the calls it makes. The registry is closed: the set of
// callable functions is fixed at compile time.
package tools

import (
	"context"

	"google.golang.org/genai"

	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/memory"
	"github.com/koopa0/pocketexpert/internal/store"
)

const addMemoryName = "addMemory"

// Registry wires model function calls to domain services.
type Registry struct {
	memories *memory.Manager
	logger   log.Logger
}

// NewRegistry creates a Registry.
func NewRegistry(memories *memory.Manager, logger log.Logger) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Registry{memories: memories, logger: logger.With("component", "tools")}
}

// Declarations returns every function offered to the model.
func (r *Registry) Declarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        addMemoryName,
			Description: "Saves a piece of information about the user to long-term memory. Use this when the user states a goal, preference, decision, or important context worth remembering.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"content": {
						Type:        genai.TypeString,
						Description: "The information to remember, phrased as a standalone statement.",
					},
					"type": {
						Type:        genai.TypeString,
						Description: "The category of the memory.",
						Enum: []string{
							string(store.MemoryGoals),
							string(store.MemoryPreferences),
							string(store.MemoryContext),
							string(store.MemoryDecisions),
							string(store.MemoryHistory),
						},
					},
				},
				Required: []string{"content", "type"},
			},
		},
	}
}

// Execute dispatches one function call and always produces a response
// envelope the model can consume. Failures are reported inside the
// envelope, never as errors or panics.
func (r *Registry) Execute(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
	if call == nil {
		return nil
	}

	var result string
	switch call.Name {
	case addMemoryName:
		result = r.addMemory(ctx, call.Args)
	default:
		r.logger.Warn("model called unknown function", "name", call.Name)
		result = "unknown function"
	}

	return &genai.FunctionResponse{
		ID:       call.ID,
		Name:     call.Name,
		Response: map[string]any{"result": result},
	}
}

func (r *Registry) addMemory(ctx context.Context, args map[string]any) string {
	content, _ := args["content"].(string)
	typ, _ := args["type"].(string)
	if content == "" || typ == "" {
		return "error saving memory: missing content or type"
	}

	if _, err := r.memories.Add(ctx, content, store.MemoryType(typ)); err != nil {
		r.logger.Error("addMemory failed", "error", err)
		return "error saving memory"
	}
	return "ok"
}
