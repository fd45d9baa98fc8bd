// Package assistant builds and sends Gemini requests. It is the only
// package that talks to the model API; everything above it works with
// plain domain values.
//
// Error policy follows the product, not the transport: conversational
// calls never return errors, they degrade to fixed apology text after
// retries are exhausted. Image generation is the single operation that
// surfaces its error to the caller.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/koopa0/pocketexpert/internal/config"
	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/observability"
	"github.com/koopa0/pocketexpert/internal/store"
)

// persona is the fixed system identity for conversational requests.
const persona = "You are a world-class business professor and execution partner."

// Apology texts returned when a model call fails. These are user-facing.
const (
	apologyChat     = "Sorry, I encountered an error. This could be due to an invalid API key or a network issue. Please check your settings."
	apologyImage    = "Sorry, I was unable to analyze the image. This could be due to an invalid API key or a network issue. Please check your settings."
	apologyCanvas   = "An error occurred while generating suggestions. This could be due to an invalid API key or a network issue. Please check your settings."
	apologyModel    = "An error occurred while analyzing the model. Please check your API key and network connection."
	apologyTemplate = "Error: Could not generate the template. Please check your API key and try again."
)

const maxAttempts = 3

// Models names the model tier used for each kind of request. Vision
// rides on the flash tier.
type Models struct {
	Flash  string
	Pro    string
	Vision string
	Image  string
}

// Client is the assistant request builder.
type Client struct {
	genai   *genai.Client
	models  Models
	limiter *rate.Limiter
	sink    *observability.Sink
	logger  log.Logger
}

// New creates a Client from configuration. The rate limiter spreads
// requests across the minute with a small burst allowance.
func New(ctx context.Context, cfg *config.Config, sink *observability.Sink, logger log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if sink == nil {
		sink = observability.NewSink(logger)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{
		genai: client,
		models: Models{
			Flash:  cfg.FlashModel,
			Pro:    cfg.ProModel,
			Vision: cfg.FlashModel,
			Image:  cfg.ImageModel,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute),
		sink:    sink,
		logger:  logger.With("component", "assistant"),
	}, nil
}

// ChatOptions shape a single conversational request.
type ChatOptions struct {
	// DeepThinking selects the pro model with an unbounded thinking
	// budget. Off means flash with thinking disabled.
	DeepThinking bool

	// ResearchMode attaches Google Search grounding. It wins over Tools:
	// the API rejects requests carrying both search and function
	// declarations, so they are mutually exclusive here.
	ResearchMode bool

	// Tools are function declarations offered to the model. Ignored when
	// ResearchMode is set.
	Tools []*genai.FunctionDeclaration

	// Memories are injected into the system instruction in caller order.
	Memories []store.Memory
}

// Reply is the assistant's answer to a chat turn.
type Reply struct {
	Text          string
	Sources       []store.GroundingSource
	FunctionCalls []*genai.FunctionCall
}

// Chat sends one conversational turn. Failures degrade to an apology
// reply; the error never reaches the caller.
func (c *Client) Chat(ctx context.Context, history []*genai.Content, opts ChatOptions) Reply {
	model, cfg := c.chatRequest(opts)
	resp, err := c.generate(ctx, "chat", model, history, cfg)
	if err != nil {
		return Reply{Text: apologyChat}
	}

	return Reply{
		Text:          resp.Text(),
		Sources:       extractSources(resp),
		FunctionCalls: resp.FunctionCalls(),
	}
}

// chatRequest resolves the model tier and request config for one turn.
// Deep thinking selects the pro model with the default (unbounded)
// thinking budget; otherwise the flash model runs with thinking
// explicitly disabled.
func (c *Client) chatRequest(opts ChatOptions) (string, *genai.GenerateContentConfig) {
	model := c.models.Flash
	if opts.DeepThinking {
		model = c.models.Pro
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction(opts.Memories), genai.RoleUser),
		Tools:             chatTools(opts),
	}
	if !opts.DeepThinking {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(int32(0))}
	}
	return model, cfg
}

// generate runs one GenerateContent call with rate limiting, retry on
// transient failures, and timing. All failures are logged here.
func (c *Client) generate(ctx context.Context, op, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	c.sink.StartMeasure(op)
	defer c.sink.EndMeasure(op)

	var resp *genai.GenerateContentResponse
	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			var callErr error
			resp, callErr = c.genai.Models.GenerateContent(ctx, model, contents, cfg)
			if callErr != nil && !transient(callErr) {
				return retry.Unrecoverable(callErr)
			}
			return callErr
		},
		retry.Attempts(maxAttempts),
		retry.Context(ctx),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		c.sink.LogError(err, "op", op, "model", model)
		c.logger.Error("model call failed", "op", op, "model", model, "error", err)
		return nil, err
	}
	return resp, nil
}

// transient reports whether a failure is worth retrying. API errors are
// retried on throttling and server-side codes; anything without an API
// status (timeouts, connection resets) is assumed transient.
func transient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// systemInstruction composes the persona with the memory context block,
// one "- {type}: {content}" line per memory in the given order.
func systemInstruction(memories []store.Memory) string {
	if len(memories) == 0 {
		return persona
	}
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nHere is some context about the user's goals and preferences. Keep this in mind when responding:\n")
	for _, m := range memories {
		fmt.Fprintf(&b, "- %s: %s\n", m.Type, m.Content)
	}
	return b.String()
}

// chatTools resolves the tool set for a chat turn. Research mode and
// function tools never coexist; research wins.
func chatTools(opts ChatOptions) []*genai.Tool {
	if opts.ResearchMode {
		return []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if len(opts.Tools) > 0 {
		return []*genai.Tool{{FunctionDeclarations: opts.Tools}}
	}
	return nil
}

// extractSources pulls web grounding chunks out of a response. Chunks
// without a URI are dropped, duplicates collapse on URI, and a missing
// title falls back to the URI.
func extractSources(resp *genai.GenerateContentResponse) []store.GroundingSource {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	var sources []store.GroundingSource
	seen := make(map[string]bool)
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		if seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		sources = append(sources, store.GroundingSource{Title: title, URI: chunk.Web.URI})
	}
	return sources
}
