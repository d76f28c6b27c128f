package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/documind-hq/documind/internal/documents"
)

// fromDocx extracts paragraph text from word/document.xml inside the
// OOXML archive. No library in use here: a docx is a zip of XML and the
// needed subset (w:p paragraphs containing w:t text runs) is small.
func fromDocx(path string) (string, Metadata, error) {
	meta := Metadata{FileType: documents.FileTypeDocx}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", meta, fmt.Errorf("opening docx archive: %w", err)
	}
	defer zr.Close()

	var docXML io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", meta, fmt.Errorf("opening document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", meta, fmt.Errorf("docx missing word/document.xml")
	}
	defer docXML.Close()

	var (
		b          strings.Builder
		paragraphs int
		inText     bool
	)
	dec := xml.NewDecoder(docXML)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", meta, fmt.Errorf("parsing document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs++
				b.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	meta.PageCount = paragraphs
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", meta, ErrNoText
	}
	return text, meta, nil
}
