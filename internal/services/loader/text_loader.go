package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
)

// TextLoader loads a plain-text file as a single segment with page 0.
type TextLoader struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.DocumentLoader = (*TextLoader)(nil)

// NewTextLoader creates a new plain-text loader
func NewTextLoader(logger arbor.ILogger) *TextLoader {
	return &TextLoader{logger: logger}
}

func (l *TextLoader) Type() models.DocumentType {
	return models.DocumentTypeText
}

func (l *TextLoader) Load(ctx context.Context, path string) ([]models.Segment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	return []models.Segment{{Text: string(content), Page: 0}}, nil
}
