package chunker

import (
	"fmt"
	"unicode"

	"pdfchat/internal/domain"
)

// Chunk is a bounded contiguous slice of a document's extracted text.
// Start and End are rune offsets into the source text.
type Chunk struct {
	Index int
	Text  string
	Start int // inclusive
	End   int // exclusive
}

// Chunker splits text into overlapping fixed-size segments. Splitting is
// deterministic: identical input and configuration always yield the same
// chunk sequence.
type Chunker struct {
	size    int // target chunk size in runes
	overlap int // overlap between consecutive chunks in runes
}

// New creates a Chunker with the given target chunk size and overlap, both in
// rune counts. Overlap must be strictly less than size and both must be positive.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be greater than 0, got %d", domain.ErrInvalidChunkConfig, size)
	}
	if overlap <= 0 {
		return nil, fmt.Errorf("%w: overlap must be greater than 0, got %d", domain.ErrInvalidChunkConfig, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap (%d) must be less than chunk size (%d)", domain.ErrInvalidChunkConfig, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split produces an ordered sequence of chunks covering the entire input with
// no gaps. Consecutive chunks overlap by exactly the configured overlap, so
// concatenating chunks with the overlap prefix removed reconstructs the input.
// Split points prefer sentence and whitespace boundaries within a lookback
// window of 10% of the chunk size, falling back to a hard cut.
func (c *Chunker) Split(text string) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	lookback := c.size / 10
	if lookback < 1 {
		lookback = 1
	}

	var chunks []Chunk
	start := 0
	for {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, Chunk{
				Index: len(chunks),
				Text:  string(runes[start:]),
				Start: start,
				End:   len(runes),
			})
			break
		}

		if boundary := findBoundary(runes, end, lookback); boundary > start {
			end = boundary
		}
		// A boundary cut must still leave forward progress after the overlap
		// is rewound; otherwise fall back to the hard cut.
		if end-c.overlap <= start {
			end = start + c.size
		}

		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
		})
		start = end - c.overlap
	}

	return chunks
}

// findBoundary looks backwards from end (exclusive) within the lookback window
// for a preferred split point. Sentence ends win over plain whitespace. The
// returned offset is the rune index immediately after the boundary, or 0 when
// no boundary exists in the window.
func findBoundary(runes []rune, end, lookback int) int {
	low := end - lookback
	if low < 0 {
		low = 0
	}

	bestWhitespace := 0
	for i := end - 1; i >= low; i-- {
		r := runes[i]
		if isSentenceEnd(r) && i+1 < end && unicode.IsSpace(runes[i+1]) {
			return i + 2 // include the trailing space
		}
		if bestWhitespace == 0 && unicode.IsSpace(r) {
			bestWhitespace = i + 1
		}
	}
	return bestWhitespace
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
