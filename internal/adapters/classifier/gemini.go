package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/chironhq/chiron/internal/domain/model"
	"github.com/chironhq/chiron/pkg/metrics"
)

const defaultGeminiModel = "gemini-1.5-flash"

const classifyPrompt = `Analyze the following text and break it down into academic or professional subjects with percentage weights.
Respond with ONLY a JSON object mapping subject names to fractional weights that sum to 1.0, for example:
{"Mathematics": 0.6, "Physics": 0.4}

Text: %s`

// Gemini classifies text by prompting a Gemini model for a subject
// breakdown in JSON form.
type Gemini struct {
	client *genai.Client
	model  string

	metricsEnabled bool
}

// NewGemini creates a classifier backed by the Gemini API.
func NewGemini(ctx context.Context, apiKey, modelName string, opts ...GeminiOption) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required: %w", ErrUnavailable)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if modelName = strings.TrimSpace(modelName); modelName == "" {
		modelName = defaultGeminiModel
	}

	g := &Gemini{
		client:         client,
		model:          modelName,
		metricsEnabled: true,
	}

	// Apply all options
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Classify prompts the model and parses its JSON answer into a normalized
// breakdown. Callers should fall back to GeneralBreakdown on error.
func (g *Gemini) Classify(ctx context.Context, text string) ([]model.SubjectWeight, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	start := time.Now()
	if g.metricsEnabled {
		metrics.RecordClassifierCall()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(fmt.Sprintf(classifyPrompt, text)), nil)
	if err != nil {
		if g.metricsEnabled {
			metrics.RecordClassifierError()
		}
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if g.metricsEnabled {
		metrics.RecordClassifierLatency(float64(time.Since(start).Milliseconds()))
	}

	breakdown, err := ParseBreakdown(collectText(resp))
	if err != nil {
		if g.metricsEnabled {
			metrics.RecordClassifierError()
		}
		return nil, err
	}
	return breakdown, nil
}

// collectText concatenates the textual parts of all candidates.
func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}
	return b.String()
}

// ParseBreakdown extracts a subject breakdown from a model response. Models
// often wrap JSON in markdown code fences; those are stripped before
// unmarshaling.
func ParseBreakdown(raw string) ([]model.SubjectWeight, error) {
	raw = stripCodeFences(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty response: %w", ErrInvalidResponse)
	}

	var weights map[string]float64
	if err := json.Unmarshal([]byte(raw), &weights); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown: %w", ErrInvalidResponse)
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("no subjects in response: %w", ErrInvalidResponse)
	}

	out := make([]model.SubjectWeight, 0, len(weights))
	for topic, w := range weights {
		out = append(out, model.SubjectWeight{Topic: topic, Weight: w})
	}
	return Normalize(out), nil
}

func stripCodeFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if i := strings.LastIndex(raw, "```"); i >= 0 {
			raw = raw[:i]
		}
	}
	return strings.TrimSpace(raw)
}
