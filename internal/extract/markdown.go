package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/documind-hq/documind/internal/documents"
)

// fromMarkdown parses the document with goldmark and walks the AST,
// collecting text content and keeping block boundaries as paragraph
// breaks. Formatting syntax (emphasis markers, link targets, heading
// hashes) is dropped.
func fromMarkdown(path string) (string, Metadata, error) {
	meta := Metadata{FileType: documents.FileTypeMarkdown}

	src, err := os.ReadFile(path)
	if err != nil {
		return "", meta, fmt.Errorf("reading markdown file: %w", err)
	}

	root := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var b strings.Builder
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
		case *ast.AutoLink:
			b.Write(node.URL(src))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", meta, fmt.Errorf("walking markdown ast: %w", err)
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", meta, ErrNoText
	}
	return text, meta, nil
}
