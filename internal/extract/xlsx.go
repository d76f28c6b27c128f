package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/documind-hq/documind/internal/documents"
)

// fromXlsx renders each worksheet as pipe-separated rows under a sheet
// heading, in workbook order.
func fromXlsx(path string) (string, Metadata, error) {
	meta := Metadata{FileType: documents.FileTypeXlsx}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", meta, fmt.Errorf("opening xlsx workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	meta.PageCount = len(sheets)

	var b strings.Builder
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return "", meta, fmt.Errorf("reading sheet %q: %w", name, err)
		}

		var lines []string
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " | "))
			if strings.Trim(line, " |") == "" {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}

		fmt.Fprintf(&b, "=== Sheet: %s ===\n\n", name)
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", meta, ErrNoText
	}
	return text, meta, nil
}
