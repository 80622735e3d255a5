package extractor

import (
	"errors"
	"strings"
	"testing"

	"pdfchat/internal/domain"
)

func TestExtract_PlainText(t *testing.T) {
	extraction, err := Extract([]byte("hello world\nsecond line"), "text/plain")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if extraction.Text != "hello world\nsecond line" {
		t.Errorf("text = %q", extraction.Text)
	}
	if extraction.PageCount != 1 {
		t.Errorf("page count = %d, want 1", extraction.PageCount)
	}
	if extraction.Pages != nil {
		t.Errorf("plain text should have no page spans, got %v", extraction.Pages)
	}
}

func TestExtract_PlainTextWithCharset(t *testing.T) {
	extraction, err := Extract([]byte("content"), "text/plain; charset=utf-8")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if extraction.Text != "content" {
		t.Errorf("text = %q", extraction.Text)
	}
}

func TestExtract_Markdown(t *testing.T) {
	input := "# Title\n\nSome **bold** and *italic* text.\n\n- item one\n- item two\n\n```\ncode block\n```\n"
	extraction, err := Extract([]byte(input), "text/markdown")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	for _, want := range []string{"Title", "bold", "italic", "item one", "item two", "code block"} {
		if !strings.Contains(extraction.Text, want) {
			t.Errorf("extracted text missing %q: %q", want, extraction.Text)
		}
	}
	for _, markup := range []string{"#", "**", "```", "- "} {
		if strings.Contains(extraction.Text, markup) {
			t.Errorf("extracted text retains markup %q: %q", markup, extraction.Text)
		}
	}
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
	}{
		{name: "zip", mediaType: "application/zip"},
		{name: "image", mediaType: "image/png"},
		{name: "empty", mediaType: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte("data"), tt.mediaType)
			if !errors.Is(err, domain.ErrUnsupportedFormat) {
				t.Errorf("Extract() error = %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		mediaType string
	}{
		{name: "empty plain text", data: []byte(""), mediaType: "text/plain"},
		{name: "whitespace only", data: []byte("  \n\t \n"), mediaType: "text/plain"},
		{name: "markdown markup only", data: []byte("---\n"), mediaType: "text/markdown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.data, tt.mediaType)
			if !errors.Is(err, domain.ErrEmptyDocument) {
				t.Errorf("Extract() error = %v, want ErrEmptyDocument", err)
			}
		})
	}
}

func TestExtract_CorruptPDF(t *testing.T) {
	_, err := Extract([]byte("this is not a pdf"), "application/pdf")
	if !errors.Is(err, domain.ErrCorruptDocument) {
		t.Errorf("Extract() error = %v, want ErrCorruptDocument", err)
	}
}

func TestExtract_InvalidUTF8(t *testing.T) {
	_, err := Extract([]byte{0xff, 0xfe, 0xfd}, "text/plain")
	if !errors.Is(err, domain.ErrCorruptDocument) {
		t.Errorf("Extract() error = %v, want ErrCorruptDocument", err)
	}
}

func TestPageAt(t *testing.T) {
	extraction := &Extraction{
		Text: strings.Repeat("x", 30),
		Pages: []PageSpan{
			{Page: 1, Start: 0, End: 10},
			{Page: 2, Start: 11, End: 25},
		},
		PageCount: 2,
	}

	tests := []struct {
		name   string
		offset int
		want   int
	}{
		{name: "first page start", offset: 0, want: 1},
		{name: "first page end", offset: 9, want: 1},
		{name: "separator falls to second page start", offset: 11, want: 2},
		{name: "second page", offset: 20, want: 2},
		{name: "past last span clamps to last page", offset: 28, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extraction.PageAt(tt.offset); got != tt.want {
				t.Errorf("PageAt(%d) = %d, want %d", tt.offset, got, tt.want)
			}
		})
	}
}

func TestPageAt_NoPages(t *testing.T) {
	extraction := &Extraction{Text: "plain", PageCount: 1}
	if got := extraction.PageAt(3); got != 0 {
		t.Errorf("PageAt() = %d, want 0 for unpaged source", got)
	}
}
