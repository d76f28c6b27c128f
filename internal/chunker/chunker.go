// Package chunker splits extracted document text into overlapping segments
// sized for embedding. Splitting prefers paragraph, sentence, and word
// boundaries over hard cuts so that a chunk stays semantically coherent.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// Chunk is one segment of the source text. Index is zero-based and
// contiguous in source order.
type Chunk struct {
	Content string
	Index   int
}

// Splitter produces deterministic chunks for a fixed size and overlap:
// the same text always yields the same boundaries, which keeps
// re-indexing reproducible.
type Splitter struct {
	size    int
	overlap int
}

// New creates a Splitter with the given target chunk size and overlap,
// both measured in runes. Invalid values fall back to 1000/200.
func New(size, overlap int) *Splitter {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 200
		if overlap >= size {
			overlap = 0
		}
	}
	return &Splitter{size: size, overlap: overlap}
}

// separators in preference order; a hard rune cut is the fallback.
var separators = []string{"\n\n", "\n", ". ", " "}

// Split chunks text into segments of at most the target size. Adjacent
// segments overlap so context spanning a boundary is not lost to either
// side. Empty or whitespace-only text yields no chunks; text shorter than
// the target yields exactly one.
func (s *Splitter) Split(text string) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	var chunks []Chunk

	start := 0
	for start < n {
		end := start + s.size
		if end >= n {
			end = n
		} else {
			end = start + s.breakPoint(runes[start:end])
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			chunks = append(chunks, Chunk{Content: piece, Index: len(chunks)})
		}

		if end == n {
			break
		}
		next := end - s.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// breakPoint returns the cut position, in runes relative to the window
// start, that best preserves coherence: the last paragraph break in the
// window, else the last newline, sentence, or word boundary, else a hard
// cut at the window end. Cuts in the first half of the window are
// rejected so chunks cannot degenerate.
func (s *Splitter) breakPoint(window []rune) int {
	text := string(window)
	minCut := len(window) / 2
	for _, sep := range separators {
		idx := strings.LastIndex(text, sep)
		if idx < 0 {
			continue
		}
		cut := utf8.RuneCountInString(text[:idx+len(sep)])
		if cut > minCut {
			return cut
		}
	}
	return len(window)
}
