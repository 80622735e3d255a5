package chunker

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"pdfchat/internal/domain"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "valid config", size: 1000, overlap: 200, wantErr: false},
		{name: "zero size", size: 0, overlap: 200, wantErr: true},
		{name: "negative size", size: -1, overlap: 200, wantErr: true},
		{name: "zero overlap", size: 1000, overlap: 0, wantErr: true},
		{name: "overlap equals size", size: 200, overlap: 200, wantErr: true},
		{name: "overlap exceeds size", size: 100, overlap: 200, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidChunkConfig) {
					t.Errorf("New(%d, %d) error = %v, want ErrInvalidChunkConfig", tt.size, tt.overlap, err)
				}
				return
			}
			if err != nil {
				t.Errorf("New(%d, %d) unexpected error: %v", tt.size, tt.overlap, err)
			}
		})
	}
}

func TestSplit_Empty(t *testing.T) {
	c, err := New(100, 20)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if chunks := c.Split(""); chunks != nil {
		t.Errorf("Split(\"\") = %v, want nil", chunks)
	}
}

func TestSplit_ShortInput(t *testing.T) {
	c, err := New(100, 20)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	chunks := c.Split("short text")
	if len(chunks) != 1 {
		t.Fatalf("Split() returned %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != "short text" {
		t.Errorf("chunk text = %q, want %q", chunks[0].Text, "short text")
	}
	if chunks[0].Start != 0 || chunks[0].End != 10 {
		t.Errorf("chunk offsets = [%d,%d), want [0,10)", chunks[0].Start, chunks[0].End)
	}
}

func TestSplit_ChunkCount(t *testing.T) {
	// 4500 runes at size 1000 / overlap 200 must yield at least 5 chunks.
	c, err := New(1000, 200)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	text := strings.Repeat("a", 4500)
	chunks := c.Split(text)
	if len(chunks) < 5 {
		t.Errorf("Split() returned %d chunks, want >= 5", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	// Concatenating chunks with the overlap prefix removed must reproduce
	// the input exactly.
	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
	}{
		{name: "uniform text", size: 100, overlap: 20, text: strings.Repeat("x", 537)},
		{name: "sentences", size: 50, overlap: 10, text: strings.Repeat("One sentence here. Another follows it. ", 30)},
		{name: "multibyte runes", size: 40, overlap: 8, text: strings.Repeat("héllo wörld über ämbient. ", 25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.size, tt.overlap)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}

			chunks := c.Split(tt.text)
			var rebuilt strings.Builder
			for i, chunk := range chunks {
				runes := []rune(chunk.Text)
				if i == 0 {
					rebuilt.WriteString(chunk.Text)
					continue
				}
				if len(runes) <= tt.overlap {
					t.Fatalf("chunk %d has %d runes, want > overlap %d", i, len(runes), tt.overlap)
				}
				rebuilt.WriteString(string(runes[tt.overlap:]))
			}
			if rebuilt.String() != tt.text {
				t.Errorf("reconstruction mismatch: got %d runes, want %d", len([]rune(rebuilt.String())), len([]rune(tt.text)))
			}
		})
	}
}

func TestSplit_Deterministic(t *testing.T) {
	c, err := New(80, 16)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	first := c.Split(text)
	second := c.Split(text)
	if !reflect.DeepEqual(first, second) {
		t.Error("Split() is not deterministic for identical input")
	}
}

func TestSplit_PrefersSentenceBoundary(t *testing.T) {
	c, err := New(30, 5)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// Sentence end at rune 27, inside the lookback window of the first cut.
	text := strings.Repeat("a", 27) + ". " + strings.Repeat("b", 40)
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("Split() returned %d chunks, want >= 2", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, ". ") {
		t.Errorf("first chunk = %q, want sentence boundary suffix", chunks[0].Text)
	}
	if chunks[1].Start != chunks[0].End-5 {
		t.Errorf("second chunk start = %d, want %d", chunks[1].Start, chunks[0].End-5)
	}
}

func TestSplit_OffsetsAreContiguous(t *testing.T) {
	c, err := New(64, 12)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	text := strings.Repeat("some words to split apart ", 50)
	chunks := c.Split(text)
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start != chunks[i-1].End-12 {
			t.Errorf("chunk %d starts at %d, want %d", i, chunks[i].Start, chunks[i-1].End-12)
		}
	}
	if last := chunks[len(chunks)-1]; last.End != len([]rune(text)) {
		t.Errorf("last chunk ends at %d, want %d", last.End, len([]rune(text)))
	}
}
