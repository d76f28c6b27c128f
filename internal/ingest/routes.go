package ingest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the job-status endpoint.
func RegisterRoutes(r chi.Router, q *Queue) {
	r.Get("/api/documents/{id}/job", handleJobStatus(q))
}

func handleJobStatus(q *Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid document id", http.StatusBadRequest)
			return
		}

		job, err := q.Status(id)
		if errors.Is(err, ErrJobNotFound) {
			http.Error(w, "no ingestion job for document", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(job)
	}
}
