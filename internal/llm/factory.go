package llm

import (
	"fmt"
	"os"

	"github.com/documind-hq/documind/internal/config"
)

// New constructs the completion provider selected by the configuration.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("provider openai requires %s", config.APIKeyEnvVar(config.ProviderOpenAI))
		}
		return NewOpenAIProvider(apiKey, cfg.Model, cfg.CompleteTimeout()), nil

	case config.ProviderOllama:
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, cfg.Model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Provider)
	}
}
