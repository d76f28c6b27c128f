package vectordb

import (
	"context"
	"math"
	"strings"
	"testing"
)

const testDims = 4

// vecAt returns a unit vector at the given angle from the x axis, so its
// cosine similarity against vecAt(0) is exactly cos(angle).
func vecAt(angle float64) []float32 {
	return []float32{float32(math.Cos(angle)), float32(math.Sin(angle)), 0, 0}
}

func newTestIndex(t *testing.T) *ChromemIndex {
	t.Helper()
	idx, err := NewChromemIndex(testDims)
	if err != nil {
		t.Fatalf("NewChromemIndex: %v", err)
	}
	return idx
}

func TestAddChunksAndCount(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	chunks := []Chunk{
		{DocumentID: 1, Index: 0, Content: "first", Embedding: vecAt(0), FileType: "txt"},
		{DocumentID: 1, Index: 1, Content: "second", Embedding: vecAt(0.1), FileType: "txt"},
	}
	if err := idx.AddChunks(ctx, chunks); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}
	if idx.Count() != 2 {
		t.Errorf("Count = %d, want 2", idx.Count())
	}
}

func TestAddChunksRejectsWrongDimensions(t *testing.T) {
	idx := newTestIndex(t)

	err := idx.AddChunks(context.Background(), []Chunk{
		{DocumentID: 1, Index: 0, Content: "bad", Embedding: []float32{1, 0}},
	})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := newTestIndex(t)

	results, err := idx.Search(context.Background(), vecAt(0), 5, 0.7)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from empty index, want 0", len(results))
	}
}

func TestSearchOrdersByDescendingSimilarity(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	// Angles chosen so cosine similarities against vecAt(0) are
	// roughly 1.0, 0.95, 0.86 and 0.50.
	err := idx.AddChunks(ctx, []Chunk{
		{DocumentID: 3, Index: 0, Content: "far", Embedding: vecAt(1.047)},
		{DocumentID: 1, Index: 0, Content: "exact", Embedding: vecAt(0)},
		{DocumentID: 2, Index: 0, Content: "close", Embedding: vecAt(0.317)},
		{DocumentID: 1, Index: 1, Content: "closer", Embedding: vecAt(0.527)},
	})
	if err != nil {
		t.Fatalf("AddChunks: %v", err)
	}

	results, err := idx.Search(ctx, vecAt(0), 5, 0.7)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// The 0.50 match sits below the floor.
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3: %+v", len(results), results)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Errorf("results not in descending order: %+v", results)
		}
	}
	if results[0].DocumentID != 1 || results[0].ChunkIndex != 0 {
		t.Errorf("best match = doc %d chunk %d, want doc 1 chunk 0", results[0].DocumentID, results[0].ChunkIndex)
	}
}

func TestSearchFloorIsStrict(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.AddChunks(ctx, []Chunk{
		{DocumentID: 1, Index: 0, Content: "identical", Embedding: vecAt(0)},
	}); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}

	// Similarity 1.0 is not strictly above a floor of 1.0.
	results, err := idx.Search(ctx, vecAt(0), 5, 1.0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSearchBreaksTiesByDocumentAndChunk(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	// Three chunks with identical embeddings produce identical scores.
	err := idx.AddChunks(ctx, []Chunk{
		{DocumentID: 2, Index: 0, Content: "c", Embedding: vecAt(0)},
		{DocumentID: 1, Index: 1, Content: "b", Embedding: vecAt(0)},
		{DocumentID: 1, Index: 0, Content: "a", Embedding: vecAt(0)},
	})
	if err != nil {
		t.Fatalf("AddChunks: %v", err)
	}

	results, err := idx.Search(ctx, vecAt(0), 5, 0.5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	want := []struct {
		doc   int64
		chunk int
	}{{1, 0}, {1, 1}, {2, 0}}
	for i, w := range want {
		if results[i].DocumentID != w.doc || results[i].ChunkIndex != w.chunk {
			t.Errorf("result %d = doc %d chunk %d, want doc %d chunk %d",
				i, results[i].DocumentID, results[i].ChunkIndex, w.doc, w.chunk)
		}
	}
}

func TestSearchTruncatesToTopK(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	var chunks []Chunk
	for i := 0; i < 8; i++ {
		chunks = append(chunks, Chunk{
			DocumentID: 1, Index: i, Content: "c", Embedding: vecAt(float64(i) * 0.05),
		})
	}
	if err := idx.AddChunks(ctx, chunks); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}

	results, err := idx.Search(ctx, vecAt(0), 3, 0.5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestSearchRejectsWrongQueryDimensions(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.Search(context.Background(), []float32{1, 0}, 5, 0.7); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestDeleteDocumentRemovesOnlyItsChunks(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	err := idx.AddChunks(ctx, []Chunk{
		{DocumentID: 1, Index: 0, Content: "keep", Embedding: vecAt(0)},
		{DocumentID: 2, Index: 0, Content: "drop", Embedding: vecAt(0.1)},
		{DocumentID: 2, Index: 1, Content: "drop", Embedding: vecAt(0.2)},
	})
	if err != nil {
		t.Fatalf("AddChunks: %v", err)
	}

	if err := idx.DeleteDocument(ctx, 2); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if idx.Count() != 1 {
		t.Fatalf("Count = %d, want 1", idx.Count())
	}

	results, err := idx.Search(ctx, vecAt(0), 5, 0.5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range results {
		if r.DocumentID == 2 {
			t.Errorf("deleted document still searchable: %+v", r)
		}
	}
}

func TestReset(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.AddChunks(ctx, []Chunk{
		{DocumentID: 1, Index: 0, Content: "c", Embedding: vecAt(0)},
	}); err != nil {
		t.Fatalf("AddChunks: %v", err)
	}
	if err := idx.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if idx.Count() != 0 {
		t.Errorf("Count after reset = %d, want 0", idx.Count())
	}

	// The index stays usable after a reset.
	if err := idx.AddChunks(ctx, []Chunk{
		{DocumentID: 2, Index: 0, Content: "c", Embedding: vecAt(0)},
	}); err != nil {
		t.Fatalf("AddChunks after reset: %v", err)
	}
}

func TestPersistAndLoad(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx := newTestIndex(t)
	err := idx.AddChunks(ctx, []Chunk{
		{DocumentID: 7, Index: 0, Content: "restored", Embedding: vecAt(0), FileType: "md", PageCount: 1},
		{DocumentID: 7, Index: 1, Content: "also restored", Embedding: vecAt(0.3), FileType: "md", PageCount: 1},
	})
	if err != nil {
		t.Fatalf("AddChunks: %v", err)
	}
	if err := idx.Persist(ctx, dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	restored := newTestIndex(t)
	if err := restored.Load(ctx, dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if restored.Count() != 2 {
		t.Fatalf("Count after load = %d, want 2", restored.Count())
	}

	results, err := restored.Search(ctx, vecAt(0), 5, 0.5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 || results[0].Content != "restored" {
		t.Errorf("unexpected results after load: %+v", results)
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Load(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected error for missing snapshot")
	}
}

func TestFormatResults(t *testing.T) {
	out := FormatResults(nil)
	if out != "No results found." {
		t.Errorf("empty output = %q", out)
	}

	out = FormatResults([]SearchResult{
		{DocumentID: 1, ChunkIndex: 2, Content: "body", Similarity: 0.91},
	})
	for _, want := range []string{"Found 1 result(s)", "0.9100", "Document 1, section 2", "body"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
