package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/config"
)

// NewClient builds the generation and embedding clients for the configured
// provider. Providers without embedding support return a nil EmbedderClient;
// callers that need embeddings must check.
func NewClient(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (LLMClient, EmbedderClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL)
		return c, c, nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	case "claude":
		c := NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
		return c, nil, nil

	case "ollama":
		// Ollama speaks the OpenAI-compatible API; reuse that client.
		baseURL := strings.TrimRight(cfg.BaseURL, "/")
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL += "/v1"
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama" // required by the client config, ignored by Ollama
		}
		log.Info("routing ollama through openai-compatible api", zap.String("base_url", baseURL))
		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL)
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
