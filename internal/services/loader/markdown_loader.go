package loader

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// MarkdownLoader parses markdown with goldmark and walks the AST to
// collect plain text, dropping formatting syntax before chunking. The
// result is a single segment with page 0.
type MarkdownLoader struct {
	logger arbor.ILogger
	md     goldmark.Markdown
}

// Compile-time interface assertion
var _ interfaces.DocumentLoader = (*MarkdownLoader)(nil)

// NewMarkdownLoader creates a new markdown loader
func NewMarkdownLoader(logger arbor.ILogger) *MarkdownLoader {
	return &MarkdownLoader{
		logger: logger,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
			),
		),
	}
}

func (l *MarkdownLoader) Type() models.DocumentType {
	return models.DocumentTypeMarkdown
}

func (l *MarkdownLoader) Load(ctx context.Context, path string) ([]models.Segment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown file: %w", err)
	}

	plain := l.extractText(content)
	return []models.Segment{{Text: plain, Page: 0}}, nil
}

// extractText walks the parsed AST and joins the text of each block-level
// node with blank lines, mirroring the paragraph structure of the source.
func (l *MarkdownLoader) extractText(source []byte) string {
	doc := l.md.Parser().Parse(text.NewReader(source))

	var builder strings.Builder
	ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Text:
			builder.Write(n.Segment.Value(source))
			if n.HardLineBreak() || n.SoftLineBreak() {
				builder.WriteString("\n")
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				builder.Write(line.Value(source))
			}
		default:
			if node.Type() == ast.TypeBlock && builder.Len() > 0 {
				builder.WriteString("\n\n")
			}
		}

		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(builder.String())
}
