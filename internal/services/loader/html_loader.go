package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
)

// HTMLLoader converts HTML to markdown text so tags, scripts, and styles
// never end up in the index. The result is a single segment with page 0.
type HTMLLoader struct {
	logger    arbor.ILogger
	converter *md.Converter
}

// Compile-time interface assertion
var _ interfaces.DocumentLoader = (*HTMLLoader)(nil)

// NewHTMLLoader creates a new HTML loader
func NewHTMLLoader(logger arbor.ILogger) *HTMLLoader {
	return &HTMLLoader{
		logger:    logger,
		converter: md.NewConverter("", true, nil),
	}
}

func (l *HTMLLoader) Type() models.DocumentType {
	return models.DocumentTypeHTML
}

func (l *HTMLLoader) Load(ctx context.Context, path string) ([]models.Segment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML file: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Drop non-content nodes before conversion
	doc.Find("script, style, noscript").Remove()

	converted := l.converter.Convert(doc.Selection)

	return []models.Segment{{Text: converted, Page: 0}}, nil
}
