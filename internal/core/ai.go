package core

import "context"

// LLMProvider generates a completion for a prompt. Implementations make a
// single attempt and report failures as errors.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
