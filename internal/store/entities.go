package store

import (
	"encoding/json"

	"google.golang.org/genai"
)

// MemoryType categorizes a memory entry.
type MemoryType string

const (
	MemoryGoals       MemoryType = "Goals"
	MemoryPreferences MemoryType = "Preferences"
	MemoryContext     MemoryType = "Context"
	MemoryDecisions   MemoryType = "Decisions"
	MemoryHistory     MemoryType = "History"
)

// ValidMemoryType reports whether t is one of the five known categories.
func ValidMemoryType(t MemoryType) bool {
	switch t {
	case MemoryGoals, MemoryPreferences, MemoryContext, MemoryDecisions, MemoryHistory:
		return true
	}
	return false
}

// Memory is a persisted piece of user context. Created by user action or
// by the assistant through the addMemory tool.
type Memory struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Type      MemoryType `json:"type"`
	CreatedAt string     `json:"createdAt"` // RFC 3339
}

// Singleton row ids. Canvas and financial model tables intentionally hold
// exactly one row each; saves are always upserts under these keys.
const (
	CanvasID         = "main_canvas"
	FinancialModelID = "main_model"
)

// CanvasItem is one block of the lean canvas.
type CanvasItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CanvasState is the singleton canvas row.
type CanvasState struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Items []CanvasItem `json:"items"`
}

// FinancialInputs are the numeric assumptions of the financial model.
type FinancialInputs struct {
	InitialInvestment float64 `json:"initialInvestment"`
	MonthlyUserGrowth float64 `json:"monthlyUserGrowth"`
	ConversionRate    float64 `json:"conversionRate"`
	ARPU              float64 `json:"arpu"`
	COGSPercentage    float64 `json:"cogsPercentage"`
	MarketingSpend    float64 `json:"marketingSpend"`
	Salaries          float64 `json:"salaries"`
	SoftwareCosts     float64 `json:"softwareCosts"`
}

// FinancialModelState is the singleton financial-model row.
type FinancialModelState struct {
	ID     string          `json:"id"`
	Inputs FinancialInputs `json:"inputs"`
}

// Setting is a generic key/value row. Currently only the theme preference
// uses it.
type Setting struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// GroundingSource is a cited web source returned with a grounded answer.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Attachment describes a file attached to a chat message. Data carries
// the raw bytes on the inbound path and is not required once persisted.
type Attachment struct {
	Name     string `json:"name"`
	MIMEType string `json:"type"`
	Data     []byte `json:"data,omitempty"`
}

// Message senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatMessage is one turn in a conversation. A message carrying a
// FunctionCall is display-ready "resolved" history only once it also
// carries the matching FunctionResponse for the same tool name.
type ChatMessage struct {
	Sender           string                  `json:"sender"`
	Text             string                  `json:"text"`
	Attachment       *Attachment             `json:"attachment,omitempty"`
	Sources          []GroundingSource       `json:"sources,omitempty"`
	FunctionCall     *genai.FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *genai.FunctionResponse `json:"functionResponse,omitempty"`
}

// Resolved reports whether the message's function call has a matching
// response with the same tool name.
func (m ChatMessage) Resolved() bool {
	if m.FunctionCall == nil {
		return false
	}
	return m.FunctionResponse != nil && m.FunctionResponse.Name == m.FunctionCall.Name
}

// ChatSession is a stored conversation.
type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Timestamp string        `json:"timestamp"` // RFC 3339
	Messages  []ChatMessage `json:"messages"`
}
