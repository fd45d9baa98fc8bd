package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/koopa0/pocketexpert/internal/finance"
	"github.com/koopa0/pocketexpert/internal/store"
)

// CompetitiveAnalysisResult is the structured landscape report. It is
// produced on demand and never persisted.
type CompetitiveAnalysisResult struct {
	KeyPlayers             []KeyPlayer `json:"keyPlayers"`
	MarketTrends           []string    `json:"marketTrends"`
	PotentialOpportunities []string    `json:"potentialOpportunities"`
}

// KeyPlayer describes one competitor in the analysis.
type KeyPlayer struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
}

// competitiveSchema is embedded in the prompt rather than sent as a
// response schema: grounded requests do not accept structured output
// config, so the model is asked to conform in-band.
const competitiveSchema = `
{
  "type": "OBJECT",
  "properties": {
    "keyPlayers": {
      "type": "ARRAY",
      "items": {
        "type": "OBJECT",
        "properties": {
          "name": { "type": "STRING" },
          "description": { "type": "STRING" },
          "strengths": { "type": "ARRAY", "items": { "type": "STRING" } },
          "weaknesses": { "type": "ARRAY", "items": { "type": "STRING" } }
        },
        "required": ["name", "description", "strengths", "weaknesses"]
      }
    },
    "marketTrends": { "type": "ARRAY", "items": { "type": "STRING" } },
    "potentialOpportunities": { "type": "ARRAY", "items": { "type": "STRING" } }
  },
  "required": ["keyPlayers", "marketTrends", "potentialOpportunities"]
}`

// CompetitiveAnalysis researches a topic with search grounding and
// returns the parsed report plus its web sources. A transport failure
// yields (nil, nil); a response that fails to parse yields nil result
// with whatever sources were attached. Neither is an error to the
// caller.
func (c *Client) CompetitiveAnalysis(ctx context.Context, query string) (*CompetitiveAnalysisResult, []store.GroundingSource) {
	prompt := fmt.Sprintf("Provide a detailed competitive landscape analysis for the following topic: %q. "+
		"Respond ONLY with a valid JSON object that conforms to the following schema. "+
		"Do not include any other text or markdown formatting. \n\nSchema:\n%s", query, competitiveSchema)

	resp, err := c.generate(ctx, "competitive_analysis", c.models.Pro, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return nil, nil
	}

	var result *CompetitiveAnalysisResult
	jsonText := stripFences(resp.Text())
	var parsed CompetitiveAnalysisResult
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		c.sink.LogError(err, "op", "competitive_analysis_parse", "response_text", resp.Text())
		c.logger.Warn("competitive analysis response did not parse", "error", err)
	} else {
		result = &parsed
	}

	return result, extractSources(resp)
}

// AnalyzeImage runs a single-turn vision request over inline image
// bytes. No history, memories, or tools are attached.
func (c *Client) AnalyzeImage(ctx context.Context, prompt string, data []byte, mimeType string) string {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	resp, err := c.generate(ctx, "analyze_image", c.models.Vision, contents, nil)
	if err != nil {
		return apologyImage
	}
	return resp.Text()
}

// CanvasSuggestions reviews the lean canvas and returns markdown
// feedback focused on empty or weak sections.
func (c *Client) CanvasSuggestions(ctx context.Context, name string, items []store.CanvasItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a world-class business strategist. I am building a business plan using a Lean Canvas.\n")
	fmt.Fprintf(&b, "The project is called %q.\n", name)
	b.WriteString("Here is the current state of my canvas:\n")
	for _, item := range items {
		content := item.Content
		if content == "" {
			content = "Not filled yet."
		}
		fmt.Fprintf(&b, "- %s: %s\n", item.Title, content)
	}
	b.WriteString("\nBased on the information provided, please provide concise, actionable suggestions to improve or complete this canvas.\n")
	b.WriteString("Focus on the areas that are empty or weak. Provide your feedback in a structured markdown format.")

	resp, err := c.generate(ctx, "canvas_suggestions", c.models.Pro, genai.Text(b.String()), nil)
	if err != nil {
		return apologyCanvas
	}
	return resp.Text()
}

// AnalyzeFinancialModel reviews the model assumptions together with the
// simulated projections and returns a markdown report.
func (c *Client) AnalyzeFinancialModel(ctx context.Context, inputs store.FinancialInputs, projections finance.Projections) string {
	opEx := inputs.MarketingSpend + inputs.Salaries + inputs.SoftwareCosts

	var b strings.Builder
	b.WriteString("You are an expert financial analyst for startups. I have a business model and financial projections. Please provide a concise analysis.\n\n")
	b.WriteString("Assumptions:\n")
	fmt.Fprintf(&b, "- Initial Investment: $%.0f\n", inputs.InitialInvestment)
	fmt.Fprintf(&b, "- Monthly User Growth: %g%%\n", inputs.MonthlyUserGrowth)
	fmt.Fprintf(&b, "- Conversion Rate: %g%%\n", inputs.ConversionRate)
	fmt.Fprintf(&b, "- ARPU: $%g\n", inputs.ARPU)
	fmt.Fprintf(&b, "- COGS: %g%% of Revenue\n", inputs.COGSPercentage)
	fmt.Fprintf(&b, "- Monthly OpEx (Marketing, Salaries, Software): $%.0f\n\n", opEx)
	b.WriteString("Key Projection Results:\n")
	fmt.Fprintf(&b, "- Projected Runway: %s\n", projections.KPIValue("Projected Runway"))
	fmt.Fprintf(&b, "- Break-Even Point: %s\n", projections.KPIValue("Break-Even Point"))
	fmt.Fprintf(&b, "- Avg. Burn Rate: %s\n\n", projections.KPIValue("Avg. Burn Rate"))
	b.WriteString("Based on this data, provide:\n")
	b.WriteString("1. **Executive Summary:** A brief, high-level overview of the financial situation.\n")
	b.WriteString("2. **Key Risks:** Identify the 2-3 biggest risks in this model (e.g., high burn rate, dependency on growth, low margins). Be specific.\n")
	b.WriteString("3. **Potential Opportunities:** Suggest 2-3 actionable opportunities for improvement.\n\n")
	b.WriteString("Present your analysis in clear, structured markdown.")

	resp, err := c.generate(ctx, "analyze_financial_model", c.models.Pro, genai.Text(b.String()), nil)
	if err != nil {
		return apologyModel
	}
	return resp.Text()
}

// GenerateTemplate produces a ready-to-use markdown business template
// for the requested purpose.
func (c *Client) GenerateTemplate(ctx context.Context, purpose string) string {
	prompt := fmt.Sprintf("You are a tool that generates business templates in Markdown format.\n"+
		"The user has requested a template for the following purpose: %q.\n\n"+
		"Generate a comprehensive and well-structured Markdown template that is ready to use.\n"+
		"Include clear headings, bullet points, and placeholder text where appropriate.\n"+
		"Do not include any conversational text or explanations outside of the template itself.", purpose)

	resp, err := c.generate(ctx, "generate_template", c.models.Flash, genai.Text(prompt), nil)
	if err != nil {
		return apologyTemplate
	}
	return resp.Text()
}

// stripFences removes a leading ```json fence and trailing ``` so the
// body can be unmarshalled even when the model wraps its output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
