package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/documind-hq/documind/internal/embeddings"
	"github.com/documind-hq/documind/internal/llm"
)

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	TopK      int    `json:"top_k"`
}

type statsResponse struct {
	TotalDocuments  int64   `json:"total_documents"`
	TotalChunks     int64   `json:"total_chunks"`
	TotalQueries    int64   `json:"total_queries"`
	AvgResponseTime float64 `json:"avg_response_time"`
}

func (s *Server) registerQueryRoutes(r chi.Router) {
	r.Post("/api/query", s.handleQuery)
	r.Get("/api/stats", s.handleStats)
	r.Post("/api/cache/clear", s.handleCacheClear)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}

	answer, err := s.pipeline.Answer(r.Context(), req.Query, req.SessionID, req.TopK)
	if err != nil {
		// Backend outages are the caller's signal to retry later.
		if errors.Is(err, embeddings.ErrUnavailable) || errors.Is(err, llm.ErrUnavailable) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docCount, err := s.docs.DocumentCount(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	chunkCount, err := s.docs.ChunkCount(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	queryCount, err := s.chats.QueryCount(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	avg, err := s.chats.AvgResponseTime(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalDocuments:  docCount,
		TotalChunks:     chunkCount,
		TotalQueries:    queryCount,
		AvgResponseTime: avg,
	})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := s.queryCache.InvalidateAll(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cache cleared successfully"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
