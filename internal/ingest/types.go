package ingest

import (
	"errors"
	"time"
)

// JobState tracks an ingestion job through its lifecycle.
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Job describes one background ingestion of an uploaded document.
type Job struct {
	ID         string     `json:"id"`
	DocumentID int64      `json:"document_id"`
	State      JobState   `json:"state"`
	Error      string     `json:"error,omitempty"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// active reports whether the job still owns its document's ingestion.
func (j *Job) active() bool {
	return j.State == JobPending || j.State == JobRunning
}

var (
	// ErrInFlight means the document already has a pending or running
	// job. At most one job may write a document's chunks at a time.
	ErrInFlight = errors.New("document is already being processed")

	// ErrQueueFull means the ingest queue cannot take more work.
	ErrQueueFull = errors.New("ingest queue is full")

	// ErrJobNotFound means no job is known for the document.
	ErrJobNotFound = errors.New("no ingestion job for document")
)
