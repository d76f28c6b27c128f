// Package extract pulls plain text out of uploaded documents so it can
// be chunked and embedded.
package extract

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/documind-hq/documind/internal/documents"
)

// ErrNoText is returned when a document yields no extractable text.
var ErrNoText = errors.New("no extractable text")

// Metadata describes the shape of an extracted document.
type Metadata struct {
	FileType documents.FileType
	// PageCount is pages for pdf, paragraphs for docx, and sheets for
	// xlsx. Zero when the format has no such notion.
	PageCount int
}

// Text extracts plain text and metadata from the file at path according
// to its declared type.
func Text(path string, fileType documents.FileType) (string, Metadata, error) {
	switch fileType {
	case documents.FileTypePDF:
		return fromPDF(path)
	case documents.FileTypeDocx:
		return fromDocx(path)
	case documents.FileTypeXlsx:
		return fromXlsx(path)
	case documents.FileTypeMarkdown:
		return fromMarkdown(path)
	case documents.FileTypeText:
		return fromText(path)
	default:
		return "", Metadata{}, fmt.Errorf("%w: %q", documents.ErrUnsupportedType, fileType)
	}
}

func fromText(path string) (string, Metadata, error) {
	meta := Metadata{FileType: documents.FileTypeText}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", meta, fmt.Errorf("reading text file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", meta, ErrNoText
	}
	return text, meta, nil
}
