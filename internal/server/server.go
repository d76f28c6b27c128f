package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/documind-hq/documind/internal/cache"
	"github.com/documind-hq/documind/internal/config"
	"github.com/documind-hq/documind/internal/documents"
	"github.com/documind-hq/documind/internal/history"
	"github.com/documind-hq/documind/internal/ingest"
	"github.com/documind-hq/documind/internal/rag"
	"github.com/documind-hq/documind/internal/vectordb"
)

// Server is the documind HTTP API: document management, retrieval-backed
// querying, chat history and platform stats.
type Server struct {
	cfg        *config.Config
	docs       *documents.Store
	chats      *history.Store
	queue      *ingest.Queue
	pipeline   *rag.Pipeline
	queryCache *cache.QueryCache
	index      vectordb.Index
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies wired.
func New(cfg *config.Config, docs *documents.Store, chats *history.Store, queue *ingest.Queue, pipeline *rag.Pipeline, queryCache *cache.QueryCache, index vectordb.Index) *Server {
	s := &Server{
		cfg:        cfg,
		docs:       docs,
		chats:      chats,
		queue:      queue,
		pipeline:   pipeline,
		queryCache: queryCache,
		index:      index,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Feature routes
	documents.RegisterRoutes(r, s.docs, s.queue, s.index, s.queryCache, s.cfg.UploadDir)
	ingest.RegisterRoutes(r, s.queue)
	history.RegisterRoutes(r, s.chats)
	s.registerQueryRoutes(r)

	return r
}

// Router returns the chi router, used directly by tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("documind server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
