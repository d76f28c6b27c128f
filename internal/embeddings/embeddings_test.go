package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// fakeOpenAI serves the embeddings endpoint, returning vectors of the
// requested dimensionality filled with the input index.
func fakeOpenAI(t *testing.T, dims int, batches *[][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		*batches = append(*batches, req.Input)

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, dims)
			for j := range vec {
				vec[j] = float32(i)
			}
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": vec}
		}
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": req.Model})
	}))
}

func testClient(baseURL string) *openai.Client {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = baseURL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestOpenAIEmbedBatching(t *testing.T) {
	var batches [][]string
	srv := fakeOpenAI(t, 1536, &batches)
	defer srv.Close()

	e := NewOpenAIEmbedderWithClient(testClient(srv.URL), ModelTextEmbedding3Small, 0)

	texts := make([]string, 150)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d", i)
	}

	vecs, err := e.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 150 {
		t.Fatalf("got %d vectors, want 150", len(vecs))
	}
	if len(batches) != 2 || len(batches[0]) != 100 || len(batches[1]) != 50 {
		t.Errorf("batch sizes = %v, want [100 50]", batchSizes(batches))
	}
	for i, v := range vecs {
		if len(v) != 1536 {
			t.Fatalf("vector %d has %d dims", i, len(v))
		}
	}
	// Order must follow input order within each batch.
	if vecs[0][0] != 0 || vecs[99][0] != 99 || vecs[100][0] != 0 {
		t.Errorf("vectors out of order: %v %v %v", vecs[0][0], vecs[99][0], vecs[100][0])
	}
}

func batchSizes(batches [][]string) []int {
	sizes := make([]int, len(batches))
	for i, b := range batches {
		sizes[i] = len(b)
	}
	return sizes
}

func TestOpenAIEmbedEmptyInput(t *testing.T) {
	e := NewOpenAIEmbedderWithClient(testClient("http://127.0.0.1:0"), ModelTextEmbedding3Small, 0)
	vecs, err := e.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if vecs != nil {
		t.Errorf("got %v, want nil", vecs)
	}
}

func TestOpenAIEmbedRetriesRateLimit(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"rate limited","type":"rate_limit_exceeded"}}`)
			return
		}
		vec := make([]float32, 1536)
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": vec}},
		})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedderWithClient(testClient(srv.URL), ModelTextEmbedding3Small, 0)
	vecs, err := e.Embed(context.Background(), []string{"hello"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 1 {
		t.Fatalf("got %d vectors, want 1", len(vecs))
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}

func TestOpenAIEmbedUnreachable(t *testing.T) {
	e := NewOpenAIEmbedderWithClient(testClient("http://127.0.0.1:1"), ModelTextEmbedding3Small, 0)
	_, err := e.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestOpenAIEmbedDimensionMismatch(t *testing.T) {
	var batches [][]string
	srv := fakeOpenAI(t, 8, &batches)
	defer srv.Close()

	e := NewOpenAIEmbedderWithClient(testClient(srv.URL), ModelTextEmbedding3Small, 0)
	_, err := e.Embed(context.Background(), []string{"hello"})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if errors.Is(err, ErrUnavailable) {
		t.Errorf("dimension mismatch should not be ErrUnavailable: %v", err)
	}
}

func TestOllamaEmbed(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		vecs := make([][]float32, len(req.Input))
		for i, text := range req.Input {
			vecs[i] = []float32{float32(len(text)), 1, 2, 3}
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: vecs})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 4, srv.URL)
	vecs, err := e.Embed(context.Background(), []string{"ab", "abcd"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if vecs[0][0] != 2 || vecs[1][0] != 4 {
		t.Errorf("vectors out of order: %v", vecs)
	}
	if calls != 1 {
		t.Errorf("made %d requests, want a single batched call", calls)
	}
	if e.Dimensions() != 4 || e.Name() != "ollama/nomic-embed-text" {
		t.Errorf("Dimensions/Name = %d %q", e.Dimensions(), e.Name())
	}
}

func TestOllamaEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1, 2, 3, 4}}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 4, srv.URL)
	_, err := e.Embed(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected count mismatch error")
	}
	if errors.Is(err, ErrUnavailable) {
		t.Errorf("count mismatch should not be ErrUnavailable: %v", err)
	}
}

func TestOllamaEmbedUnreachable(t *testing.T) {
	e := NewOllamaEmbedder("nomic-embed-text", 4, "http://127.0.0.1:1")
	_, err := e.Embed(context.Background(), []string{"hello"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}
