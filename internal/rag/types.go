package rag

// Source identifies one retrieved chunk that backed an answer.
type Source struct {
	DocumentID      int64   `json:"document_id"`
	ChunkIndex      int     `json:"chunk_index"`
	SimilarityScore float32 `json:"similarity_score"`
	ContentPreview  string  `json:"content_preview"`
}

// Answer is the response to a knowledge-base query. ResponseTime is
// measured in seconds. For a cache hit, Cached is true and ResponseTime
// covers only the cache lookup, not the original synthesis.
type Answer struct {
	Answer       string   `json:"answer"`
	Sources      []Source `json:"sources"`
	ResponseTime float64  `json:"response_time"`
	Cached       bool     `json:"cached"`
}
