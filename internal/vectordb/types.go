package vectordb

import "fmt"

// Chunk is one embedded slice of a document, ready to be indexed.
type Chunk struct {
	DocumentID int64
	Index      int
	Content    string
	Embedding  []float32
	FileType   string
	PageCount  int
}

// chunkID builds the stable index identifier for a chunk.
func chunkID(documentID int64, index int) string {
	return fmt.Sprintf("chunk:%d:%d", documentID, index)
}

// SearchResult pairs an indexed chunk with its similarity to the query.
type SearchResult struct {
	DocumentID int64
	ChunkIndex int
	Content    string
	Similarity float32
}
