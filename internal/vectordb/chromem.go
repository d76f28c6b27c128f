package vectordb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
)

const (
	collectionName = "chunks"
	snapshotFile   = "chromem.gob.gz"
)

// errNoEmbedder is returned if chromem ever asks for an embedding. All
// vectors are computed upstream and passed in precomputed.
var errNoEmbedder = errors.New("index stores precomputed embeddings only")

func rejectEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedder
}

// ChromemIndex implements Index using chromem-go.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	dims       int
}

// NewChromemIndex creates a new in-memory ChromemIndex that accepts
// vectors of the given dimensionality.
func NewChromemIndex(dims int) (*ChromemIndex, error) {
	db := chromem.NewDB()

	col, err := db.GetOrCreateCollection(collectionName, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemIndex{
		db:         db,
		collection: col,
		dims:       dims,
	}, nil
}

func (s *ChromemIndex) AddChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) != s.dims {
			return fmt.Errorf("chunk %s has %d-dimensional embedding, index expects %d",
				chunkID(c.DocumentID, c.Index), len(c.Embedding), s.dims)
		}
		docs[i] = chromem.Document{
			ID:        chunkID(c.DocumentID, c.Index),
			Content:   c.Content,
			Embedding: c.Embedding,
			Metadata:  chunkMetadata(c),
		}
	}

	return s.collection.AddDocuments(ctx, docs, 1)
}

// Search queries by precomputed embedding. Results are ordered by
// descending similarity; equal scores break ties by ascending document
// id, then chunk index, so repeated queries return identical output.
func (s *ChromemIndex) Search(ctx context.Context, queryEmbedding []float32, topK int, floor float32) ([]SearchResult, error) {
	if len(queryEmbedding) != s.dims {
		return nil, fmt.Errorf("query has %d-dimensional embedding, index expects %d", len(queryEmbedding), s.dims)
	}
	if topK <= 0 {
		topK = 5
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}

	// chromem-go requires nResults <= collection size; fetch everything
	// and apply the floor and topK cut here.
	results, err := s.collection.QueryEmbedding(ctx, queryEmbedding, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	matches := make([]SearchResult, 0, len(results))
	for _, r := range results {
		if r.Similarity <= floor {
			continue
		}
		docID, chunkIndex, err := parseChunkID(r.ID)
		if err != nil {
			return nil, err
		}
		matches = append(matches, SearchResult{
			DocumentID: docID,
			ChunkIndex: chunkIndex,
			Content:    r.Content,
			Similarity: r.Similarity,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		if matches[i].DocumentID != matches[j].DocumentID {
			return matches[i].DocumentID < matches[j].DocumentID
		}
		return matches[i].ChunkIndex < matches[j].ChunkIndex
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *ChromemIndex) DeleteDocument(ctx context.Context, documentID int64) error {
	where := map[string]string{"document_id": strconv.FormatInt(documentID, 10)}
	return s.collection.Delete(ctx, where, nil)
}

func (s *ChromemIndex) Reset(ctx context.Context) error {
	if err := s.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	col, err := s.db.GetOrCreateCollection(collectionName, nil, rejectEmbedding)
	if err != nil {
		return fmt.Errorf("recreate collection: %w", err)
	}
	s.collection = col
	return nil
}

func (s *ChromemIndex) Persist(ctx context.Context, dir string) error {
	return s.db.ExportToFile(filepath.Join(dir, snapshotFile), true, "")
}

func (s *ChromemIndex) Load(ctx context.Context, dir string) error {
	err := s.db.ImportFromFile(filepath.Join(dir, snapshotFile), "")
	if err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, rejectEmbedding)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

func (s *ChromemIndex) Count() int {
	return s.collection.Count()
}

func chunkMetadata(c Chunk) map[string]string {
	return map[string]string{
		"document_id": strconv.FormatInt(c.DocumentID, 10),
		"chunk_index": strconv.Itoa(c.Index),
		"file_type":   c.FileType,
		"page_count":  strconv.Itoa(c.PageCount),
	}
}

func parseChunkID(id string) (documentID int64, chunkIndex int, err error) {
	if _, err := fmt.Sscanf(id, "chunk:%d:%d", &documentID, &chunkIndex); err != nil {
		return 0, 0, fmt.Errorf("malformed chunk id %q: %w", id, err)
	}
	return documentID, chunkIndex, nil
}
