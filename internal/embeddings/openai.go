package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
)

const maxBatchSize = 100

// OpenAIModel represents a supported OpenAI embedding model.
type OpenAIModel string

const (
	ModelTextEmbedding3Small OpenAIModel = "text-embedding-3-small"
	ModelTextEmbedding3Large OpenAIModel = "text-embedding-3-large"
)

func (m OpenAIModel) dimensions() int {
	switch m {
	case ModelTextEmbedding3Small:
		return 1536
	case ModelTextEmbedding3Large:
		return 3072
	default:
		return 1536
	}
}

// OpenAIEmbedder generates embeddings using OpenAI's API.
type OpenAIEmbedder struct {
	client  *openai.Client
	model   OpenAIModel
	timeout time.Duration
}

// NewOpenAIEmbedder creates a new OpenAI embedder with the given API key and
// model. timeout bounds each batch request; zero means no per-batch bound.
func NewOpenAIEmbedder(apiKey string, model OpenAIModel, timeout time.Duration) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// NewOpenAIEmbedderWithClient is used by tests to point at a fake server.
func NewOpenAIEmbedderWithClient(client *openai.Client, model OpenAIModel, timeout time.Duration) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: model, timeout: timeout}
}

func (e *OpenAIEmbedder) Name() string {
	return string(e.model)
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.model.dimensions()
}

// Embed generates embeddings for the given texts, batching up to
// maxBatchSize per API call. Output order matches input order. Transient
// failures (rate limits, server errors, network timeouts) are retried with
// exponential backoff; persistent failure surfaces as ErrUnavailable.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	allEmbeddings := make([][]float32, 0, len(texts))

	for i := 0; i < len(texts); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		vecs, err := e.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		allEmbeddings = append(allEmbeddings, vecs...)
	}

	return allEmbeddings, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	var vecs [][]float32

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		reqCtx := ctx
		if e.timeout > 0 {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}

		resp, err := e.client.CreateEmbeddings(reqCtx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			if isTransient(err) && ctx.Err() == nil {
				return retry.RetryableError(err)
			}
			return err
		}

		if len(resp.Data) != len(batch) {
			return fmt.Errorf("openai returned %d embeddings, expected %d", len(resp.Data), len(batch))
		}

		vecs = make([][]float32, len(resp.Data))
		want := e.Dimensions()
		for i, emb := range resp.Data {
			if len(emb.Embedding) != want {
				return fmt.Errorf("openai returned %d-dimensional vector, expected %d", len(emb.Embedding), want)
			}
			vecs[i] = emb.Embedding
		}
		return nil
	})
	if err != nil {
		if isTransient(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	return vecs, nil
}

// isTransient reports whether an embedding call is worth retrying:
// rate limits, server-side errors and network timeouts qualify, a
// cancelled context or a client-side error does not.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
