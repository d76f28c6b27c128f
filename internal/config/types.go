package config

import "time"

// ProviderType identifies a model provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level documind configuration, corresponding to documind.yml.
type Config struct {
	Port      int    `yaml:"port" koanf:"port"`
	DataDir   string `yaml:"data_dir" koanf:"data_dir"`
	UploadDir string `yaml:"upload_dir" koanf:"upload_dir"`
	AllowAll  bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`

	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingDims     int          `yaml:"embedding_dims" koanf:"embedding_dims"`

	ChunkSize    int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap"`

	TopK            int     `yaml:"top_k" koanf:"top_k"`
	SimilarityFloor float64 `yaml:"similarity_floor" koanf:"similarity_floor"`

	RedisAddr       string `yaml:"redis_addr" koanf:"redis_addr"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds" koanf:"cache_ttl_seconds"`

	Workers                int `yaml:"workers" koanf:"workers"`
	EmbedTimeoutSeconds    int `yaml:"embed_timeout_seconds" koanf:"embed_timeout_seconds"`
	CompleteTimeoutSeconds int `yaml:"complete_timeout_seconds" koanf:"complete_timeout_seconds"`
}

// CacheTTL returns the query cache time-to-live as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// EmbedTimeout returns the per-call embedding timeout.
func (c *Config) EmbedTimeout() time.Duration {
	return time.Duration(c.EmbedTimeoutSeconds) * time.Second
}

// CompleteTimeout returns the per-call completion timeout.
func (c *Config) CompleteTimeout() time.Duration {
	return time.Duration(c.CompleteTimeoutSeconds) * time.Second
}
