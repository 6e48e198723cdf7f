package ai

import (
	"context"
)

// Client defines the contract for interacting with AI models.
// This interface allows for swapping different AI providers (Gemini, OpenAI, etc.) in the future.
type Client interface {
	// GenerateJSON sends a prompt expecting a strict JSON reply and returns
	// the raw reply text. Callers are responsible for parsing.
	GenerateJSON(ctx context.Context, prompt string) (string, error)

	// GenerateText sends a prompt expecting free-form text (markdown) and
	// returns the reply.
	GenerateText(ctx context.Context, prompt string) (string, error)
}
