package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/documind-hq/documind/internal/documents"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// writeZip creates an OOXML-style archive from part name to XML content.
func writeZip(t *testing.T, name string, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	zw := zip.NewWriter(f)
	for partName, content := range parts {
		w, err := zw.Create(partName)
		if err != nil {
			t.Fatalf("zip create %s: %v", partName, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", partName, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}
	return path
}

func TestTextFromPlainFile(t *testing.T) {
	path := writeFile(t, "notes.txt", "  hello world\nsecond line  \n")

	text, meta, err := Text(path, documents.FileTypeText)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "hello world\nsecond line" {
		t.Errorf("text = %q", text)
	}
	if meta.FileType != documents.FileTypeText || meta.PageCount != 0 {
		t.Errorf("meta = %+v", meta)
	}
}

func TestTextFromEmptyPlainFile(t *testing.T) {
	path := writeFile(t, "empty.txt", "   \n ")
	_, _, err := Text(path, documents.FileTypeText)
	if !errors.Is(err, ErrNoText) {
		t.Errorf("error = %v, want ErrNoText", err)
	}
}

func TestTextFromMarkdown(t *testing.T) {
	md := "# Onboarding\n\nWelcome to the **team**.\n\n- first step\n- second step\n\n```\ncode here\n```\n"
	path := writeFile(t, "guide.md", md)

	text, meta, err := Text(path, documents.FileTypeMarkdown)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	for _, want := range []string{"Onboarding", "Welcome to the team.", "first step", "second step", "code here"} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown text missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "#") || strings.Contains(text, "**") {
		t.Errorf("markdown syntax leaked into text:\n%s", text)
	}
	if meta.FileType != documents.FileTypeMarkdown {
		t.Errorf("meta.FileType = %q", meta.FileType)
	}
}

func TestTextFromDocx(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph about vacation policy.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph about </w:t></w:r><w:r><w:t>expense reports.</w:t></w:r></w:p>
  </w:body>
</w:document>`
	path := writeZip(t, "policy.docx", map[string]string{"word/document.xml": docXML})

	text, meta, err := Text(path, documents.FileTypeDocx)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(text, "First paragraph about vacation policy.") {
		t.Errorf("missing first paragraph:\n%s", text)
	}
	if !strings.Contains(text, "Second paragraph about expense reports.") {
		t.Errorf("split runs should join into one paragraph:\n%s", text)
	}
	if meta.PageCount != 2 {
		t.Errorf("paragraph count = %d, want 2", meta.PageCount)
	}
}

func TestTextFromXlsx(t *testing.T) {
	wb := excelize.NewFile()
	if err := wb.SetSheetName("Sheet1", "Budget"); err != nil {
		t.Fatalf("SetSheetName: %v", err)
	}
	for cell, value := range map[string]any{
		"A1": "Item", "B1": "Cost",
		"A2": "Laptop", "B2": 1200,
	} {
		if err := wb.SetCellValue("Budget", cell, value); err != nil {
			t.Fatalf("SetCellValue %s: %v", cell, err)
		}
	}
	path := filepath.Join(t.TempDir(), "budget.xlsx")
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}

	text, meta, err := Text(path, documents.FileTypeXlsx)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(text, "=== Sheet: Budget ===") {
		t.Errorf("missing sheet heading:\n%s", text)
	}
	if !strings.Contains(text, "Item | Cost") {
		t.Errorf("missing header row:\n%s", text)
	}
	if !strings.Contains(text, "Laptop | 1200") {
		t.Errorf("missing data row:\n%s", text)
	}
	if meta.PageCount != 1 {
		t.Errorf("sheet count = %d, want 1", meta.PageCount)
	}
}

// A workbook whose only sheet lives in a part not named sheet1.xml
// (here: the default sheet was deleted after adding another) must still
// be fully extracted.
func TestTextFromXlsxNonSequentialSheetParts(t *testing.T) {
	wb := excelize.NewFile()
	if _, err := wb.NewSheet("Budget"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	if err := wb.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("DeleteSheet: %v", err)
	}
	if err := wb.SetCellValue("Budget", "A1", "Quarterly totals"); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	path := filepath.Join(t.TempDir(), "totals.xlsx")
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}

	text, meta, err := Text(path, documents.FileTypeXlsx)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(text, "=== Sheet: Budget ===") || !strings.Contains(text, "Quarterly totals") {
		t.Errorf("sheet content missing:\n%s", text)
	}
	if meta.PageCount != 1 {
		t.Errorf("sheet count = %d, want 1", meta.PageCount)
	}
}

func TestTextUnknownType(t *testing.T) {
	path := writeFile(t, "notes.txt", "content")
	_, _, err := Text(path, documents.FileType("png"))
	if !errors.Is(err, documents.ErrUnsupportedType) {
		t.Errorf("error = %v, want ErrUnsupportedType", err)
	}
}
