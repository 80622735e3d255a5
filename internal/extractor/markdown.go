package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"pdfchat/internal/domain"
)

var markdownParser = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// extractMarkdown renders markdown to plain text by walking the goldmark AST,
// so that markup characters do not pollute the embedded chunks.
func extractMarkdown(data []byte) (*Extraction, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: invalid UTF-8", domain.ErrCorruptDocument)
	}

	reader := text.NewReader(data)
	doc := markdownParser.Parser().Parse(reader)

	var builder strings.Builder

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			builder.Write(node.Segment.Value(data))
			if node.HardLineBreak() || node.SoftLineBreak() {
				builder.WriteString("\n")
			}
		case *ast.String:
			builder.Write(node.Value)
		case *ast.CodeBlock:
			writeCodeLines(&builder, node.Lines(), data)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			writeCodeLines(&builder, node.Lines(), data)
			return ast.WalkSkipChildren, nil
		case *ast.Heading, *ast.Paragraph, *ast.ListItem, *ast.Blockquote:
			ensureNewline(&builder)
		default:
			// Table rows from the table extension are identified by kind name.
			kindName := n.Kind().String()
			if strings.Contains(kindName, "TableRow") || strings.Contains(kindName, "TableHeader") {
				ensureNewline(&builder)
			}
		}
		return ast.WalkContinue, nil
	})

	return &Extraction{
		Text:      builder.String(),
		Pages:     nil,
		PageCount: 1,
	}, nil
}

func writeCodeLines(builder *strings.Builder, lines *text.Segments, data []byte) {
	ensureNewline(builder)
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		builder.Write(line.Value(data))
	}
}

func ensureNewline(builder *strings.Builder) {
	if builder.Len() > 0 && !strings.HasSuffix(builder.String(), "\n") {
		builder.WriteString("\n")
	}
}
