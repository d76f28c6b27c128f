package vectordb

import (
	"fmt"
	"strings"
)

// FormatResults renders search results as human-readable text, used by
// the CLI.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("--- Result %d (similarity: %.4f) ---\n", i+1, r.Similarity))
		sb.WriteString(fmt.Sprintf("Document %d, section %d\n\n", r.DocumentID, r.ChunkIndex))
		sb.WriteString(r.Content)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
