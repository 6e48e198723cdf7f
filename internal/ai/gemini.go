package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements Client using Google's Gemini models.
type Gemini struct {
	client    *genai.Client
	jsonModel *genai.GenerativeModel
	textModel *genai.GenerativeModel
}

// NewGemini initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Use Gemini 2.0 Flash for low latency and cost efficiency.
	jsonModel := client.GenerativeModel("gemini-2.0-flash")
	jsonModel.ResponseMIMEType = "application/json"
	jsonModel.SetTemperature(0.2)

	// Narrative output wants a bit more creative freedom.
	textModel := client.GenerativeModel("gemini-2.0-flash")
	textModel.SetTemperature(0.7)

	return &Gemini{
		client:    client,
		jsonModel: jsonModel,
		textModel: textModel,
	}, nil
}

// Close cleans up the Gemini client resources.
func (g *Gemini) Close() {
	g.client.Close()
}

// GenerateJSON runs the prompt against the JSON-mode model.
func (g *Gemini) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, g.jsonModel, prompt)
}

// GenerateText runs the prompt against the free-form model.
func (g *Gemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, g.textModel, prompt)
}

func (g *Gemini) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates from Gemini")
	}

	// Extract text from the response parts.
	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}

	return out.String(), nil
}

// CleanJSON removes markdown code blocks if present (e.g. ```json ... ```)
func CleanJSON(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
