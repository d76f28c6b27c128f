package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/documind-hq/documind/internal/documents"
)

const queueCapacity = 128

type task struct {
	job  *Job
	doc  documents.Document
	path string
}

// Queue runs document ingestion on a fixed pool of workers. One document
// has at most one active job at a time, which keeps a single writer per
// document's chunk rows and index entries.
type Queue struct {
	proc    *Processor
	workers int

	tasks chan task
	wg    sync.WaitGroup

	// Jobs are tracked per document: the API only ever asks for a
	// document's most recent job, and the in-flight guard needs the
	// same keying.
	mu    sync.Mutex
	byDoc map[int64]*Job
}

// NewQueue creates a queue backed by the given processor.
func NewQueue(proc *Processor, workers int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	return &Queue{
		proc:    proc,
		workers: workers,
		tasks:   make(chan task, queueCapacity),
		byDoc:   make(map[int64]*Job),
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t := <-q.tasks:
					q.run(ctx, t)
				}
			}
		}()
	}
}

// Wait blocks until all workers have exited.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Enqueue schedules processing of an uploaded document staged at path.
func (q *Queue) Enqueue(doc documents.Document, path string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if existing, ok := q.byDoc[doc.ID]; ok && existing.active() {
		return "", ErrInFlight
	}

	job := &Job{
		ID:         uuid.NewString(),
		DocumentID: doc.ID,
		State:      JobPending,
		EnqueuedAt: time.Now().UTC(),
	}

	select {
	case q.tasks <- task{job: job, doc: doc, path: path}:
	default:
		return "", ErrQueueFull
	}

	q.byDoc[doc.ID] = job
	return job.ID, nil
}

// Status returns a snapshot of the document's most recent job.
func (q *Queue) Status(docID int64) (Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.byDoc[docID]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}

func (q *Queue) run(ctx context.Context, t task) {
	q.setState(t.job, JobRunning, nil)
	log.Info("ingesting document", "document_id", t.doc.ID, "filename", t.doc.Filename, "job_id", t.job.ID)

	start := time.Now()
	err := q.proc.Process(ctx, t.doc, t.path)
	if err != nil {
		// A failed document stays unprocessed; other jobs continue.
		log.Error("ingestion failed", "document_id", t.doc.ID, "job_id", t.job.ID, "error", err)
		q.setState(t.job, JobFailed, err)
		return
	}

	log.Info("document ingested", "document_id", t.doc.ID, "job_id", t.job.ID, "duration", time.Since(start))
	q.setState(t.job, JobSucceeded, nil)
}

func (q *Queue) setState(job *Job, state JobState, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job.State = state
	if err != nil {
		job.Error = err.Error()
	}
	if state == JobSucceeded || state == JobFailed {
		now := time.Now().UTC()
		job.FinishedAt = &now
	}
}
