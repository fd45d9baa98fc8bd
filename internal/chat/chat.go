// Package chat orchestrates one conversational turn: history shaping,
// memory context, model call, and function-call dispatch. The caller
// supplies the conversation and gets one bot message back; errors never
// escape this package.
package chat

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/koopa0/pocketexpert/internal/assistant"
	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/memory"
	"github.com/koopa0/pocketexpert/internal/observability"
	"github.com/koopa0/pocketexpert/internal/store"
)

// Assistant is the model client surface the chat flow needs.
type Assistant interface {
	Chat(ctx context.Context, history []*genai.Content, opts assistant.ChatOptions) assistant.Reply
	AnalyzeImage(ctx context.Context, prompt string, data []byte, mimeType string) string
}

// Dispatcher declares and executes model function calls.
type Dispatcher interface {
	Declarations() []*genai.FunctionDeclaration
	Execute(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse
}

// Options toggle per-turn request behaviour.
type Options struct {
	DeepThinking bool
	ResearchMode bool
}

// Service runs chat turns.
type Service struct {
	assistant    Assistant
	memories     *memory.Manager
	tools        Dispatcher
	contextCount int
	sink         *observability.Sink
	logger       log.Logger
}

// NewService creates a chat Service. contextCount bounds how many
// memories are injected per turn; non-positive falls back to the memory
// manager's default.
func NewService(a Assistant, memories *memory.Manager, tools Dispatcher, contextCount int, sink *observability.Sink, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNop()
	}
	if sink == nil {
		sink = observability.NewSink(logger)
	}
	return &Service{
		assistant:    a,
		memories:     memories,
		tools:        tools,
		contextCount: contextCount,
		sink:         sink,
		logger:       logger.With("component", "chat"),
	}
}

// Respond produces the bot's reply to userMsg given the prior history.
//
// An image attachment routes the turn through the vision path alone:
// no history, no memories, no tools. Otherwise the turn goes to the
// conversational model with function tools attached; when the model
// calls a function, only the first call is executed and the reply
// carries the call/response pair with empty text. The follow-up round
// trip that turns the pair into prose is the caller's next Respond.
func (s *Service) Respond(ctx context.Context, history []store.ChatMessage, userMsg store.ChatMessage, opts Options) store.ChatMessage {
	s.sink.StartMeasure("chat_turn")
	defer s.sink.EndMeasure("chat_turn")

	if att := userMsg.Attachment; att != nil && strings.HasPrefix(att.MIMEType, "image/") {
		text := s.assistant.AnalyzeImage(ctx, userMsg.Text, att.Data, att.MIMEType)
		return store.ChatMessage{Sender: store.SenderBot, Text: text}
	}

	contents := toContents(history)
	if userMsg.Text != "" {
		contents = append(contents, genai.NewContentFromText(userMsg.Text, genai.RoleUser))
	}

	reply := s.assistant.Chat(ctx, contents, assistant.ChatOptions{
		DeepThinking: opts.DeepThinking,
		ResearchMode: opts.ResearchMode,
		Tools:        s.tools.Declarations(),
		Memories:     s.memories.RecentForContext(ctx, s.contextCount),
	})

	if len(reply.FunctionCalls) > 0 {
		call := reply.FunctionCalls[0]
		if len(reply.FunctionCalls) > 1 {
			s.logger.Warn("model returned multiple function calls, executing first only",
				"count", len(reply.FunctionCalls), "name", call.Name)
		}
		resp := s.tools.Execute(ctx, call)
		return store.ChatMessage{
			Sender:           store.SenderBot,
			Text:             "",
			FunctionCall:     call,
			FunctionResponse: resp,
		}
	}

	return store.ChatMessage{Sender: store.SenderBot, Text: reply.Text, Sources: reply.Sources}
}

// toContents converts stored messages into model turns. A resolved
// function-call message expands into the model's call turn plus a user
// turn carrying the response; unresolved calls and bare responses are
// dropped, since the API rejects dangling halves of a tool exchange.
func toContents(history []store.ChatMessage) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range history {
		if msg.FunctionCall != nil {
			if !msg.Resolved() {
				continue
			}
			contents = append(contents,
				genai.NewContentFromParts([]*genai.Part{{FunctionCall: msg.FunctionCall}}, genai.RoleModel),
				genai.NewContentFromParts([]*genai.Part{{FunctionResponse: msg.FunctionResponse}}, genai.RoleUser),
			)
			continue
		}
		if msg.FunctionResponse != nil || msg.Text == "" {
			continue
		}

		role := genai.Role(genai.RoleModel)
		if msg.Sender == store.SenderUser {
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(msg.Text, role))
	}
	return contents
}
