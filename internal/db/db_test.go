package db

import (
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Verify tables exist by querying each one.
	tables := []string{"documents", "document_chunks", "chat_history"}
	for _, table := range tables {
		var count int
		err := d.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Running migrate again should not fail.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestChunkCascadeDelete(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	res, err := d.Exec(`INSERT INTO documents (filename, file_type) VALUES ('a.txt', 'txt')`)
	if err != nil {
		t.Fatalf("insert document: %v", err)
	}
	docID, _ := res.LastInsertId()

	_, err = d.Exec(`INSERT INTO document_chunks (document_id, chunk_index, content, embedding) VALUES (?, 0, 'hello', x'00')`, docID)
	if err != nil {
		t.Fatalf("insert chunk: %v", err)
	}

	if _, err := d.Exec(`DELETE FROM documents WHERE id = ?`, docID); err != nil {
		t.Fatalf("delete document: %v", err)
	}

	var count int
	if err := d.QueryRow(`SELECT COUNT(*) FROM document_chunks WHERE document_id = ?`, docID).Scan(&count); err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	if count != 0 {
		t.Errorf("expected cascade delete to remove chunks, found %d", count)
	}
}
