package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/markdave123-py/LoanAdvisor/internal/config"
	"github.com/markdave123-py/LoanAdvisor/internal/core"
)

// NewProvider builds the inference provider selected by INFERENCE_PROVIDER.
// The returned close function releases provider resources.
func NewProvider(ctx context.Context, cfg *config.Config) (core.LLMProvider, func() error, error) {
	switch strings.ToLower(cfg.InferenceProvider) {
	case "", "ollama":
		return NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, cfg.InferenceTimeout), func() error { return nil }, nil
	case "gemini":
		g, err := NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel, cfg.InferenceTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("couldn't initialize the gemini provider, %w", err)
		}
		return g, g.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown inference provider %q", cfg.InferenceProvider)
	}
}
