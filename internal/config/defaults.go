package config

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:      8000,
		DataDir:   "data",
		UploadDir: "data/uploads",

		Provider:          ProviderOpenAI,
		Model:             "gpt-4o-mini",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		EmbeddingDims:     1536,

		ChunkSize:    1000,
		ChunkOverlap: 200,

		TopK:            5,
		SimilarityFloor: 0.7,

		RedisAddr:       "localhost:6379",
		CacheTTLSeconds: 3600,

		Workers:                2,
		EmbedTimeoutSeconds:    10,
		CompleteTimeoutSeconds: 45,
	}
}
