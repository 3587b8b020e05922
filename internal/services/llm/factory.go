package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/ternarybob/responsa/internal/interfaces"
)

// NewGenerationService creates the generation service for the configured
// provider. Gemini reuses the embedding service's client; Claude gets its
// own client since it only serves generation.
func NewGenerationService(config *common.Config, gemini *GeminiService, logger arbor.ILogger) (interfaces.GenerationService, error) {
	switch config.LLM.DefaultProvider {
	case common.LLMProviderGemini:
		return gemini, nil
	case common.LLMProviderClaude:
		return NewClaudeService(&config.Claude, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.LLM.DefaultProvider)
	}
}
