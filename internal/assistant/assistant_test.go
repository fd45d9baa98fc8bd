package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/koopa0/pocketexpert/internal/store"
)

func TestSystemInstruction(t *testing.T) {
	if got := systemInstruction(nil); got != persona {
		t.Errorf("no memories: got %q, want bare persona", got)
	}

	memories := []store.Memory{
		{Type: store.MemoryGoals, Content: "Reach 1k users"},
		{Type: store.MemoryPreferences, Content: "Prefers brevity"},
	}
	got := systemInstruction(memories)
	if !strings.HasPrefix(got, persona) {
		t.Errorf("persona not leading: %q", got)
	}
	wantLines := []string{
		"- Goals: Reach 1k users",
		"- Preferences: Prefers brevity",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line) {
			t.Errorf("missing memory line %q in %q", line, got)
		}
	}
	// Caller order is preserved.
	if strings.Index(got, wantLines[0]) > strings.Index(got, wantLines[1]) {
		t.Error("memory lines reordered")
	}
}

func TestChatTools_Exclusivity(t *testing.T) {
	decl := []*genai.FunctionDeclaration{{Name: "addMemory"}}

	tests := []struct {
		name string
		opts ChatOptions
		want string
	}{
		{name: "none", opts: ChatOptions{}, want: "none"},
		{name: "functions only", opts: ChatOptions{Tools: decl}, want: "functions"},
		{name: "research only", opts: ChatOptions{ResearchMode: true}, want: "search"},
		{name: "research wins over functions", opts: ChatOptions{ResearchMode: true, Tools: decl}, want: "search"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools := chatTools(tt.opts)
			switch tt.want {
			case "none":
				if tools != nil {
					t.Errorf("tools = %+v, want nil", tools)
				}
			case "functions":
				if len(tools) != 1 || tools[0].FunctionDeclarations == nil || tools[0].GoogleSearch != nil {
					t.Errorf("tools = %+v, want function declarations only", tools)
				}
			case "search":
				if len(tools) != 1 || tools[0].GoogleSearch == nil || tools[0].FunctionDeclarations != nil {
					t.Errorf("tools = %+v, want google search only", tools)
				}
			}
		})
	}
}

func TestExtractSources(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{Title: "Example", URI: "https://example.com"}},
					{Web: &genai.GroundingChunkWeb{Title: "No URI"}},
					{Web: &genai.GroundingChunkWeb{URI: "https://untitled.dev"}},
					{Web: &genai.GroundingChunkWeb{Title: "Duplicate", URI: "https://example.com"}},
					{},
				},
			},
		}},
	}

	got := extractSources(resp)
	want := []store.GroundingSource{
		{Title: "Example", URI: "https://example.com"},
		{Title: "https://untitled.dev", URI: "https://untitled.dev"},
	}
	if len(got) != len(want) {
		t.Fatalf("sources = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("source %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractSources_Empty(t *testing.T) {
	if got := extractSources(nil); got != nil {
		t.Errorf("nil response: %+v", got)
	}
	if got := extractSources(&genai.GenerateContentResponse{}); got != nil {
		t.Errorf("no candidates: %+v", got)
	}
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}
	if got := extractSources(resp); got != nil {
		t.Errorf("no grounding metadata: %+v", got)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare json", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "plain fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding whitespace", in: "  {\"a\":1}\n", want: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestChatRequest_ModelAndBudget(t *testing.T) {
	c := &Client{models: Models{Flash: "flash-tier", Pro: "pro-tier"}}

	model, cfg := c.chatRequest(ChatOptions{DeepThinking: false})
	if model != "flash-tier" {
		t.Errorf("model = %q, want flash tier", model)
	}
	if cfg.ThinkingConfig == nil || cfg.ThinkingConfig.ThinkingBudget == nil || *cfg.ThinkingConfig.ThinkingBudget != 0 {
		t.Errorf("thinking config = %+v, want explicit zero budget", cfg.ThinkingConfig)
	}

	model, cfg = c.chatRequest(ChatOptions{DeepThinking: true})
	if model != "pro-tier" {
		t.Errorf("model = %q, want pro tier", model)
	}
	if cfg.ThinkingConfig != nil {
		t.Errorf("thinking config = %+v, want absent for deep thinking", cfg.ThinkingConfig)
	}
	if cfg.SystemInstruction == nil {
		t.Error("system instruction missing")
	}
}

func TestTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "throttled", err: genai.APIError{Code: 429}, want: true},
		{name: "server error", err: genai.APIError{Code: 503}, want: true},
		{name: "bad request", err: genai.APIError{Code: 400}, want: false},
		{name: "unauthorized", err: genai.APIError{Code: 401}, want: false},
		{name: "network", err: errors.New("connection reset"), want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transient(tt.err); got != tt.want {
				t.Errorf("transient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGenerateImage_RejectsUnknownAspectRatio(t *testing.T) {
	c := &Client{}
	_, err := c.GenerateImage(context.Background(), "a lighthouse", "2:1")
	if !errors.Is(err, ErrImageGeneration) {
		t.Fatalf("err = %v, want ErrImageGeneration", err)
	}
}
