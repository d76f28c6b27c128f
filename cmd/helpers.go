package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/documind-hq/documind/internal/config"
	"github.com/documind-hq/documind/internal/documents"
	"github.com/documind-hq/documind/internal/llm"
	"github.com/documind-hq/documind/internal/vectordb"
)

// llmRequestsPerMinute caps outbound completion calls so a burst of
// uncached queries cannot trip provider rate limits.
const llmRequestsPerMinute = 60

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w (run 'documind init' to generate a fresh one)", err)
	}
	return cfg, nil
}

func newProvider(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}
	return llm.NewRateLimitedProvider(provider, llmRequestsPerMinute), nil
}

// openIndex restores the vector index from its on-disk snapshot, or
// rebuilds it from the chunks stored in SQLite when no snapshot exists.
func openIndex(ctx context.Context, cfg *config.Config, store *documents.Store) (*vectordb.ChromemIndex, error) {
	index, err := vectordb.NewChromemIndex(cfg.EmbeddingDims)
	if err != nil {
		return nil, fmt.Errorf("creating vector index: %w", err)
	}

	if err := index.Load(ctx, cfg.DataDir); err == nil {
		log.Info("vector index restored from snapshot", "chunks", index.Count())
		return index, nil
	}

	chunks, err := store.AllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading stored chunks: %w", err)
	}
	if len(chunks) == 0 {
		return index, nil
	}

	vchunks := make([]vectordb.Chunk, 0, len(chunks))
	for _, c := range chunks {
		vchunks = append(vchunks, vectordb.Chunk{
			DocumentID: c.DocumentID,
			Index:      c.Index,
			Content:    c.Content,
			Embedding:  c.Embedding,
			FileType:   string(c.FileType),
			PageCount:  c.PageCount,
		})
	}
	if err := index.AddChunks(ctx, vchunks); err != nil {
		return nil, fmt.Errorf("rebuilding vector index: %w", err)
	}
	log.Info("vector index rebuilt from database", "chunks", index.Count())
	return index, nil
}
