package documents

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// FileType is the declared type of an uploaded document.
type FileType string

const (
	FileTypePDF      FileType = "pdf"
	FileTypeDocx     FileType = "docx"
	FileTypeXlsx     FileType = "xlsx"
	FileTypeText     FileType = "txt"
	FileTypeMarkdown FileType = "md"
)

var (
	// ErrUnsupportedType is returned for uploads with an unrecognized extension.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrNotFound is returned when a document id does not exist.
	ErrNotFound = errors.New("document not found")
)

// extensionTypes maps filename extensions to declared file types.
var extensionTypes = map[string]FileType{
	".pdf":      FileTypePDF,
	".docx":     FileTypeDocx,
	".doc":      FileTypeDocx,
	".xlsx":     FileTypeXlsx,
	".xls":      FileTypeXlsx,
	".txt":      FileTypeText,
	".md":       FileTypeMarkdown,
	".markdown": FileTypeMarkdown,
}

// FileTypeFromName determines the declared file type from a filename extension.
func FileTypeFromName(filename string) (FileType, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ft, ok := extensionTypes[ext]
	if !ok {
		return "", ErrUnsupportedType
	}
	return ft, nil
}

// Document is an uploaded file tracked through ingestion.
// Content holds a short preview of the extracted text, populated once
// processing completes.
type Document struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	FileType   FileType  `json:"file_type"`
	Content    string    `json:"-"`
	UploadDate time.Time `json:"upload_date"`
	FileSize   int64     `json:"file_size"`
	PageCount  int       `json:"page_count,omitempty"`
	Processed  bool      `json:"processed"`
}

// Chunk is one stored segment of a document's extracted text, together
// with its embedding. Chunks are immutable after creation and removed by
// cascade when their document is deleted.
type Chunk struct {
	ID         int64
	DocumentID int64
	Index      int
	Content    string
	Embedding  []float32
	FileType   FileType
	PageCount  int
}
