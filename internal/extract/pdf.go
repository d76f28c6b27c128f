package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/documind-hq/documind/internal/documents"
)

func fromPDF(path string) (string, Metadata, error) {
	meta := Metadata{FileType: documents.FileTypePDF}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", meta, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	meta.PageCount = r.NumPage()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", meta, fmt.Errorf("extracting pdf text: %w", err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, reader); err != nil {
		return "", meta, fmt.Errorf("reading pdf text: %w", err)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", meta, ErrNoText
	}
	return text, meta, nil
}
