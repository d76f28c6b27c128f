package embeddings

import (
	"fmt"
	"os"

	"github.com/documind-hq/documind/internal/config"
)

// New constructs the embedder selected by the configuration.
func New(cfg *config.Config) (Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("embedding provider openai requires %s", config.APIKeyEnvVar(config.ProviderOpenAI))
		}
		return NewOpenAIEmbedder(apiKey, OpenAIModel(cfg.EmbeddingModel), cfg.EmbedTimeout()), nil
	case config.ProviderOllama:
		return NewOllamaEmbedder(cfg.EmbeddingModel, cfg.EmbeddingDims, os.Getenv("OLLAMA_HOST")), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.EmbeddingProvider)
	}
}
