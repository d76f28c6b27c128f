package rag

import (
	"fmt"
	"strings"

	"github.com/documind-hq/documind/internal/llm"
	"github.com/documind-hq/documind/internal/vectordb"
)

// FallbackAnswer is returned when retrieval finds nothing above the
// similarity floor. It is never cached and never recorded in history.
const FallbackAnswer = "I couldn't find any relevant information in the knowledge base to answer your question. Please try rephrasing or check if the relevant documents have been uploaded."

// answerPrompt instructs the model to answer strictly from the supplied
// context and to admit when the context does not contain the answer.
const answerPrompt = `You are DocuMind, an intelligent assistant that helps users find information from their organization's documentation.

Use the following pieces of context from internal documents to answer the question. If you don't know the answer based on the context, say so - don't make up information.

Context:
%s

Question: %s

Provide a clear, comprehensive answer based on the context above. Include relevant details and cite which documents the information came from when applicable.

Answer:`

const (
	answerTemperature = 0.7

	// maxContextTokens bounds the retrieved context handed to the model.
	maxContextTokens = 3000

	previewChars = 200
)

// fitContext drops trailing results once the estimated token budget is
// exhausted. The best match is always kept.
func fitContext(results []vectordb.SearchResult) []vectordb.SearchResult {
	total := 0
	for i, r := range results {
		total += llm.EstimateTokens(r.Content)
		if total > maxContextTokens && i > 0 {
			return results[:i]
		}
	}
	return results
}

// buildContext renders retrieved chunks with document and section labels
// so the model can cite them.
func buildContext(results []vectordb.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Document %d, Section %d]\n%s\n", r.DocumentID, r.ChunkIndex, r.Content)
	}
	return strings.Join(parts, "\n\n")
}

// buildSources converts retrieved chunks into answer sources with a
// short content preview.
func buildSources(results []vectordb.SearchResult) []Source {
	sources := make([]Source, len(results))
	for i, r := range results {
		sources[i] = Source{
			DocumentID:      r.DocumentID,
			ChunkIndex:      r.ChunkIndex,
			SimilarityScore: r.Similarity,
			ContentPreview:  previewOf(r.Content),
		}
	}
	return sources
}

func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= previewChars {
		return content
	}
	return string(runes[:previewChars]) + "..."
}
