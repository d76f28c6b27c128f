package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/documind-hq/documind/internal/cache"
	"github.com/documind-hq/documind/internal/chunker"
	"github.com/documind-hq/documind/internal/db"
	"github.com/documind-hq/documind/internal/documents"
	"github.com/documind-hq/documind/internal/embeddings"
	"github.com/documind-hq/documind/internal/history"
	"github.com/documind-hq/documind/internal/ingest"
	"github.com/documind-hq/documind/internal/rag"
	"github.com/documind-hq/documind/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the documind HTTP API server",
	Long: `Starts the HTTP API for document upload, querying, chat history and
stats. Documents are ingested asynchronously by a worker pool; answers
are cached in Redis when it is available.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runServe())
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override the configured port")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	for _, dir := range []string{cfg.DataDir, cfg.UploadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "documind.db"))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	docs := documents.NewStore(database)
	chats := history.NewStore(database)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	index, err := openIndex(ctx, cfg, docs)
	if err != nil {
		return err
	}

	embedder, err := embeddings.New(cfg)
	if err != nil {
		return err
	}
	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	queryCache := cache.New(cfg.RedisAddr, cfg.CacheTTL())
	defer queryCache.Close()

	splitter := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	proc := ingest.NewProcessor(docs, index, embedder, splitter, cfg.DataDir)
	queue := ingest.NewQueue(proc, cfg.Workers)
	queue.Start(ctx)

	pipeline := rag.NewPipeline(embedder, index, provider, queryCache, chats, cfg.TopK, float32(cfg.SimilarityFloor))

	srv := server.New(cfg, docs, chats, queue, pipeline, queryCache, index)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", "error", err)
	}

	// Wait for ingest workers to stop, then snapshot the index so the
	// next start does not need a full rebuild.
	queue.Wait()
	if err := index.Persist(context.Background(), cfg.DataDir); err != nil {
		log.Warn("could not persist vector index", "error", err)
	}
	return nil
}
