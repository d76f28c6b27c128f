package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

// maxUploadBytes caps the in-memory portion of multipart parsing.
const maxUploadBytes = 64 << 20

// Ingestor enqueues background processing for an uploaded document.
type Ingestor interface {
	Enqueue(doc Document, path string) (jobID string, err error)
}

// VectorDeleter removes a document's vectors from the search index.
type VectorDeleter interface {
	DeleteDocument(ctx context.Context, docID int64) error
}

// CacheInvalidator drops all cached query answers. Invoked on document
// deletion because the corpus changed and cached answers may be stale.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// RegisterRoutes mounts document endpoints under /api/documents.
func RegisterRoutes(r chi.Router, store *Store, ingestor Ingestor, vectors VectorDeleter, cache CacheInvalidator, uploadDir string) {
	r.Route("/api/documents", func(r chi.Router) {
		r.Post("/upload", handleUpload(store, ingestor, uploadDir))
		r.Get("/", handleList(store))
		r.Get("/{id}", handleGet(store))
		r.Delete("/{id}", handleDelete(store, vectors, cache))
	})
}

func handleUpload(store *Store, ingestor Ingestor, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "invalid multipart request", http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file field", http.StatusBadRequest)
			return
		}
		defer file.Close()

		fileType, err := FileTypeFromName(header.Filename)
		if err != nil {
			http.Error(w, "unsupported file type", http.StatusBadRequest)
			return
		}

		doc, err := store.Create(r.Context(), filepath.Base(header.Filename), fileType, header.Size)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		staged, err := stageUpload(uploadDir, doc.ID, doc.Filename, file)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if _, err := ingestor.Enqueue(*doc, staged); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		writeJSON(w, http.StatusAccepted, doc)
	}
}

// stageUpload copies an uploaded file to the staging directory where the
// ingest worker will pick it up.
func stageUpload(uploadDir string, docID int64, filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}
	path := filepath.Join(uploadDir, fmt.Sprintf("%d_%s", docID, filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("staging upload: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing staged upload: %w", err)
	}
	return path, nil
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		offset, _ := strconv.Atoi(q.Get("skip"))
		limit, _ := strconv.Atoi(q.Get("limit"))

		docs, err := store.List(r.Context(), offset, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if docs == nil {
			docs = []Document{}
		}
		writeJSON(w, http.StatusOK, docs)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid document id", http.StatusBadRequest)
			return
		}

		doc, err := store.Get(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func handleDelete(store *Store, vectors VectorDeleter, cache CacheInvalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid document id", http.StatusBadRequest)
			return
		}

		if err := store.Delete(r.Context(), id); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "document not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// The document row is gone; cleanup failures past this point
		// must not turn the delete into an error for the caller.
		if err := vectors.DeleteDocument(r.Context(), id); err != nil {
			log.Warn("could not remove document vectors", "document_id", id, "error", err)
		}

		// The corpus changed, so every cached answer is suspect.
		if err := cache.InvalidateAll(r.Context()); err != nil {
			log.Warn("could not invalidate query cache", "document_id", id, "error", err)
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
