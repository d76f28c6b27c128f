package cmd

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/documind-hq/documind/internal/chunker"
	"github.com/documind-hq/documind/internal/db"
	"github.com/documind-hq/documind/internal/documents"
	"github.com/documind-hq/documind/internal/embeddings"
	"github.com/documind-hq/documind/internal/ingest"
	"github.com/documind-hq/documind/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest local documents into the knowledge base",
	Long: `Ingests files or directories of documents directly, without going
through the HTTP API. Directories are walked recursively; files with
unsupported extensions are skipped.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runIngest(args))
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(paths []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	for _, dir := range []string{cfg.DataDir, cfg.UploadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	files, err := collectFiles(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported documents found under %v", paths)
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
	embedder, err := embeddings.New(cfg)
	if err != nil {
		return err
	}

	splitter := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	// Snapshotting after every document is wasteful in bulk; persist once
	// at the end instead.
	proc := ingest.NewProcessor(docs, index, embedder, splitter, "")

	reporter := progress.NewReporter()
	reporter.Start(len(files))

	var failed int
	for i, path := range files {
		reporter.Update(i+1, filepath.Base(path))
		if err := ingestFile(ctx, cfg.UploadDir, docs, proc, path); err != nil {
			failed++
			log.Error("ingest failed", "file", path, "error", err)
		}
	}
	reporter.Finish()

	if err := index.Persist(ctx, cfg.DataDir); err != nil {
		return fmt.Errorf("persisting vector index: %w", err)
	}

	fmt.Printf("Ingested %d of %d documents (%d chunks indexed)\n", len(files)-failed, len(files), index.Count())
	if failed > 0 {
		return fmt.Errorf("%d documents failed to ingest", failed)
	}
	return nil
}

// collectFiles expands the given paths into supported document files,
// walking directories recursively.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if _, err := documents.FileTypeFromName(p); err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if _, err := documents.FileTypeFromName(path); err == nil {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// ingestFile registers one document and processes a staged copy of it,
// leaving the original file untouched.
func ingestFile(ctx context.Context, uploadDir string, docs *documents.Store, proc *ingest.Processor, path string) error {
	fileType, err := documents.FileTypeFromName(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	doc, err := docs.Create(ctx, filepath.Base(path), fileType, info.Size())
	if err != nil {
		return fmt.Errorf("registering document: %w", err)
	}

	staged := filepath.Join(uploadDir, fmt.Sprintf("%d_%s", doc.ID, filepath.Base(path)))
	if err := copyFile(path, staged); err != nil {
		return fmt.Errorf("staging %s: %w", path, err)
	}

	return proc.Process(ctx, *doc, staged)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
