package extractor

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"pdfchat/internal/domain"
)

// PageSpan maps a rune offset range of the extracted text to a source page.
type PageSpan struct {
	Page  int // 1-based page number
	Start int // inclusive rune offset
	End   int // exclusive rune offset
}

// Extraction is the result of extracting text from an uploaded document.
type Extraction struct {
	Text      string
	Pages     []PageSpan // nil when the source has no page structure
	PageCount int
}

// PageAt returns the 1-based page number containing the given rune offset,
// or 0 when the extraction has no page structure.
func (e *Extraction) PageAt(offset int) int {
	for _, span := range e.Pages {
		if offset >= span.Start && offset < span.End {
			return span.Page
		}
	}
	if n := len(e.Pages); n > 0 && offset >= e.Pages[n-1].End {
		return e.Pages[n-1].Page
	}
	return 0
}

// Extract turns a document's bytes plus its declared media type into plain text.
// Supported media types: application/pdf, text/plain and text/markdown.
// It retains no reference to data after returning.
func Extract(data []byte, mediaType string) (*Extraction, error) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, mediaType)
	}

	var extraction *Extraction
	switch mt {
	case "application/pdf":
		extraction, err = extractPDF(data)
	case "text/plain":
		extraction, err = extractPlainText(data)
	case "text/markdown":
		extraction, err = extractMarkdown(data)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, mt)
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(extraction.Text) == "" {
		return nil, domain.ErrEmptyDocument
	}
	return extraction, nil
}

// extractPDF extracts per-page text, recording the rune span of each page.
func extractPDF(data []byte) (extraction *Extraction, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			extraction = nil
			err = fmt.Errorf("%w: %v", domain.ErrCorruptDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}

	var builder strings.Builder
	var spans []PageSpan
	offset := 0
	numPages := reader.NumPage()

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", domain.ErrCorruptDocument, pageNum, err)
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
			offset++
		}
		runeLen := utf8.RuneCountInString(pageText)
		spans = append(spans, PageSpan{Page: pageNum, Start: offset, End: offset + runeLen})
		builder.WriteString(pageText)
		offset += runeLen
	}

	return &Extraction{
		Text:      builder.String(),
		Pages:     spans,
		PageCount: numPages,
	}, nil
}

func extractPlainText(data []byte) (*Extraction, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: invalid UTF-8", domain.ErrCorruptDocument)
	}
	return &Extraction{
		Text:      string(data),
		Pages:     nil,
		PageCount: 1,
	}, nil
}
