package embeddings

import "context"

// Embedder turns text into vectors for similarity search. Implementations
// must return one vector per input, in input order, all with exactly
// Dimensions() components.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the width of every vector this embedder produces.
	Dimensions() int

	// Name identifies the underlying model.
	Name() string
}
