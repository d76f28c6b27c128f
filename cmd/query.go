package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/documind-hq/documind/internal/db"
	"github.com/documind-hq/documind/internal/documents"
	"github.com/documind-hq/documind/internal/embeddings"
	"github.com/documind-hq/documind/internal/vectordb"
)

var (
	queryLimit int
	queryJSON  bool
)

var queryCmd = &cobra.Command{
	Use:   "query <text>...",
	Short: "Search the indexed documents without generating an answer",
	Long: `Embeds the given text and prints the most similar indexed chunks.
Useful for checking what the answer pipeline would retrieve.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runQuery(strings.Join(args, " ")))
	},
}

func init() {
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "maximum results (default: configured top_k)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(text string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "documind.db"))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	docs := documents.NewStore(database)
	ctx := context.Background()

	index, err := openIndex(ctx, cfg, docs)
	if err != nil {
		return err
	}
	if index.Count() == 0 {
		return fmt.Errorf("the index is empty; ingest documents first")
	}

	embedder, err := embeddings.New(cfg)
	if err != nil {
		return err
	}
	vecs, err := embedder.Embed(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("embedding query: %w", err)
	}

	limit := queryLimit
	if limit <= 0 {
		limit = cfg.TopK
	}
	results, err := index.Search(ctx, vecs[0], limit, float32(cfg.SimilarityFloor))
	if err != nil {
		return fmt.Errorf("searching index: %w", err)
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	fmt.Print(vectordb.FormatResults(results))
	return nil
}
