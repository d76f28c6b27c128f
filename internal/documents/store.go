package documents

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/documind-hq/documind/internal/db"
)

// Store provides persistence for documents and their chunks.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new, unprocessed document record.
func (s *Store) Create(ctx context.Context, filename string, fileType FileType, size int64) (*Document, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (filename, file_type, upload_date, file_size, processed)
		 VALUES (?, ?, ?, ?, 0)`,
		filename, string(fileType), now, size,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading document id: %w", err)
	}

	return &Document{
		ID:         id,
		Filename:   filename,
		FileType:   fileType,
		UploadDate: now,
		FileSize:   size,
	}, nil
}

// Get retrieves a document by id.
func (s *Store) Get(ctx context.Context, id int64) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, file_type, content, upload_date, file_size, page_count, processed
		 FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// List returns documents ordered by upload date, newest first.
func (s *Store) List(ctx context.Context, offset, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, file_type, content, upload_date, file_size, page_count, processed
		 FROM documents ORDER BY upload_date DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// Delete removes a document. Its chunks are removed by the schema's
// ON DELETE CASCADE, so no orphan chunk rows can persist.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkProcessed records the outcome of successful ingestion: a content
// preview, the page/section count, and the processed flag.
func (s *Store) MarkProcessed(ctx context.Context, id int64, preview string, pageCount int) error {
	var pages sql.NullInt64
	if pageCount > 0 {
		pages = sql.NullInt64{Int64: int64(pageCount), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET content = ?, page_count = ?, processed = 1 WHERE id = ?`,
		preview, pages, id)
	if err != nil {
		return fmt.Errorf("marking document processed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveChunks inserts all chunks of a document in one transaction.
func (s *Store) SaveChunks(ctx context.Context, docID int64, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning chunk transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO document_chunks (document_id, chunk_index, content, embedding, file_type, page_count)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		var pages sql.NullInt64
		if c.PageCount > 0 {
			pages = sql.NullInt64{Int64: int64(c.PageCount), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, docID, c.Index, c.Content, encodeVector(c.Embedding), string(c.FileType), pages); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", c.Index, err)
		}
	}

	return tx.Commit()
}

// Chunks returns all chunks of one document ordered by chunk index.
func (s *Store) Chunks(ctx context.Context, docID int64) ([]Chunk, error) {
	return s.queryChunks(ctx,
		`SELECT id, document_id, chunk_index, content, embedding, file_type, page_count
		 FROM document_chunks WHERE document_id = ? ORDER BY chunk_index`, docID)
}

// AllChunks returns every stored chunk, ordered by document then index.
// Used to rebuild the vector index from the relational store.
func (s *Store) AllChunks(ctx context.Context) ([]Chunk, error) {
	return s.queryChunks(ctx,
		`SELECT id, document_id, chunk_index, content, embedding, file_type, page_count
		 FROM document_chunks ORDER BY document_id, chunk_index`)
}

func (s *Store) queryChunks(ctx context.Context, query string, args ...any) ([]Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var (
			c     Chunk
			blob  []byte
			ft    string
			pages sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Index, &c.Content, &blob, &ft, &pages); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = decodeVector(blob)
		c.FileType = FileType(ft)
		c.PageCount = int(pages.Int64)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// DocumentCount returns the number of document rows.
func (s *Store) DocumentCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// ChunkCount returns the number of chunk rows.
func (s *Store) ChunkCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var (
		doc   Document
		ft    string
		pages sql.NullInt64
	)
	err := row.Scan(&doc.ID, &doc.Filename, &ft, &doc.Content, &doc.UploadDate, &doc.FileSize, &pages, &doc.Processed)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.FileType = FileType(ft)
	doc.PageCount = int(pages.Int64)
	return &doc, nil
}

// encodeVector packs an embedding into a little-endian float32 blob.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector unpacks a little-endian float32 blob.
func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
