package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/documind-hq/documind/internal/embeddings"
	"github.com/documind-hq/documind/internal/llm"
	"github.com/documind-hq/documind/internal/vectordb"
)

// Cache stores and retrieves previously synthesized answers.
type Cache interface {
	Get(ctx context.Context, query string) (*Answer, error)
	Put(ctx context.Context, query string, answer *Answer) error
}

// HistoryWriter records answered queries per session.
type HistoryWriter interface {
	Append(ctx context.Context, sessionID, query, response string, sources []Source, responseTime float64) error
}

// Pipeline answers queries against the indexed document corpus:
// cache lookup, retrieval, synthesis, then history and cache writes.
type Pipeline struct {
	embedder embeddings.Embedder
	index    vectordb.Index
	provider llm.Provider
	cache    Cache
	history  HistoryWriter

	topK  int
	floor float32
}

func NewPipeline(embedder embeddings.Embedder, index vectordb.Index, provider llm.Provider, cache Cache, history HistoryWriter, topK int, floor float32) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		index:    index,
		provider: provider,
		cache:    cache,
		history:  history,
		topK:     topK,
		floor:    floor,
	}
}

// Answer resolves a query. Cache hits return immediately with Cached set.
// When retrieval finds nothing above the floor, the fallback answer is
// returned without calling the model, and neither cache nor history is
// written for it. topK <= 0 falls back to the configured default.
func (p *Pipeline) Answer(ctx context.Context, query, sessionID string, topK int) (*Answer, error) {
	start := time.Now()

	if topK <= 0 {
		topK = p.topK
	}

	if cached, err := p.cache.Get(ctx, query); err != nil {
		log.Warn("cache lookup failed", "error", err)
	} else if cached != nil {
		return cached, nil
	}

	vecs, err := p.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := p.index.Search(ctx, vecs[0], topK, p.floor)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	if len(results) == 0 {
		return &Answer{
			Answer:       FallbackAnswer,
			Sources:      []Source{},
			ResponseTime: time.Since(start).Seconds(),
		}, nil
	}

	results = fitContext(results)

	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf(answerPrompt, buildContext(results), query)},
		},
		Temperature: answerTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	answer := &Answer{
		Answer:       strings.TrimSpace(resp.Content),
		Sources:      buildSources(results),
		ResponseTime: time.Since(start).Seconds(),
	}

	if cost := llm.EstimateCost(resp.Model, resp.InputTokens, resp.OutputTokens); cost > 0 {
		log.Debug("answer synthesized", "model", resp.Model,
			"input_tokens", resp.InputTokens, "output_tokens", resp.OutputTokens, "cost_usd", cost)
	}

	// A cancelled request still produced a valid answer, but recording
	// it would race the caller's teardown.
	if ctx.Err() == nil {
		if err := p.history.Append(ctx, sessionID, query, answer.Answer, answer.Sources, answer.ResponseTime); err != nil {
			log.Warn("could not record chat history", "session_id", sessionID, "error", err)
		}
		if err := p.cache.Put(ctx, query, answer); err != nil {
			log.Warn("could not cache answer", "error", err)
		}
	}

	return answer, nil
}
