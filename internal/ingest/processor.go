package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/documind-hq/documind/internal/chunker"
	"github.com/documind-hq/documind/internal/documents"
	"github.com/documind-hq/documind/internal/embeddings"
	"github.com/documind-hq/documind/internal/extract"
	"github.com/documind-hq/documind/internal/vectordb"
)

// previewRunes is how much extracted text is kept on the document row.
const previewRunes = 1000

// Processor turns a staged upload into searchable chunks: extract text,
// split, embed, persist to the relational store and the vector index.
type Processor struct {
	store    *documents.Store
	index    vectordb.Index
	embedder embeddings.Embedder
	splitter *chunker.Splitter

	// dataDir, when set, receives an index snapshot after each document.
	dataDir string
}

func NewProcessor(store *documents.Store, index vectordb.Index, embedder embeddings.Embedder, splitter *chunker.Splitter, dataDir string) *Processor {
	return &Processor{
		store:    store,
		index:    index,
		embedder: embedder,
		splitter: splitter,
		dataDir:  dataDir,
	}
}

// Process ingests one document. On success the staged file is removed
// and the document is marked processed. On failure the document stays
// unprocessed and the staged file is left in place for inspection.
func (p *Processor) Process(ctx context.Context, doc documents.Document, path string) error {
	text, meta, err := extract.Text(path, doc.FileType)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}

	pieces := p.splitter.Split(text)
	if len(pieces) == 0 {
		return fmt.Errorf("document %d produced no chunks", doc.ID)
	}

	contents := make([]string, len(pieces))
	for i, piece := range pieces {
		contents[i] = piece.Content
	}

	vecs, err := p.embedder.Embed(ctx, contents)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vecs) != len(pieces) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(pieces))
	}

	docChunks := make([]documents.Chunk, len(pieces))
	idxChunks := make([]vectordb.Chunk, len(pieces))
	for i, piece := range pieces {
		docChunks[i] = documents.Chunk{
			DocumentID: doc.ID,
			Index:      piece.Index,
			Content:    piece.Content,
			Embedding:  vecs[i],
			FileType:   doc.FileType,
			PageCount:  meta.PageCount,
		}
		idxChunks[i] = vectordb.Chunk{
			DocumentID: doc.ID,
			Index:      piece.Index,
			Content:    piece.Content,
			Embedding:  vecs[i],
			FileType:   string(doc.FileType),
			PageCount:  meta.PageCount,
		}
	}

	if err := p.store.SaveChunks(ctx, doc.ID, docChunks); err != nil {
		return fmt.Errorf("saving chunks: %w", err)
	}
	if err := p.index.AddChunks(ctx, idxChunks); err != nil {
		return fmt.Errorf("indexing chunks: %w", err)
	}

	if err := p.store.MarkProcessed(ctx, doc.ID, preview(text), meta.PageCount); err != nil {
		return fmt.Errorf("marking processed: %w", err)
	}

	if err := os.Remove(path); err != nil {
		// The document is fully ingested; a leftover staged file is
		// only worth a warning.
		log.Warn("could not remove staged upload", "path", path, "error", err)
	}

	if p.dataDir != "" {
		if err := p.index.Persist(ctx, p.dataDir); err != nil {
			log.Warn("could not persist index snapshot", "dir", p.dataDir, "error", err)
		}
	}

	return nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes])
}
