package vectordb

import "context"

// Index defines the interface for storing and searching embedded chunks.
// Embeddings are always computed by the caller; the index never calls an
// embedding backend itself.
type Index interface {
	// AddChunks adds or updates chunks in the index.
	AddChunks(ctx context.Context, chunks []Chunk) error

	// Search returns the chunks most similar to the query embedding,
	// keeping only similarities strictly above floor and at most topK
	// results. An empty result is not an error.
	Search(ctx context.Context, queryEmbedding []float32, topK int, floor float32) ([]SearchResult, error)

	// DeleteDocument removes all chunks belonging to the given document.
	DeleteDocument(ctx context.Context, documentID int64) error

	// Reset drops every chunk from the index.
	Reset(ctx context.Context) error

	// Persist saves the index data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the index data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of chunks in the index.
	Count() int
}
