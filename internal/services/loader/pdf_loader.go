package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
)

// PDFLoader extracts text from PDF files using pdfcpu, producing one
// segment per page with 1-indexed page numbers.
type PDFLoader struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.DocumentLoader = (*PDFLoader)(nil)

// NewPDFLoader creates a new PDF loader
func NewPDFLoader(logger arbor.ILogger) *PDFLoader {
	return &PDFLoader{logger: logger}
}

func (l *PDFLoader) Type() models.DocumentType {
	return models.DocumentTypePDF
}

// Load extracts per-page text from the PDF at path. Pages pdfcpu cannot
// extract text from come back as empty segments so page numbering stays
// aligned with the document.
func (l *PDFLoader) Load(ctx context.Context, path string) ([]models.Segment, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	pageCount := pdfCtx.PageCount

	// pdfcpu has no direct text extraction API, so extract page content
	// streams to a scratch directory and read them back.
	outDir, err := os.MkdirTemp("", "responsa-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		l.logger.Warn().Err(err).Str("path", path).Msg("Failed to extract PDF content")
		// Keep the page structure even when extraction fails
		segments := make([]models.Segment, 0, pageCount)
		for pageNum := 1; pageNum <= pageCount; pageNum++ {
			segments = append(segments, models.Segment{Text: "", Page: pageNum})
		}
		return segments, nil
	}

	files, _ := os.ReadDir(outDir)
	pageTexts := make(map[int]string)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
			continue
		}
		if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	segments := make([]models.Segment, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		segments = append(segments, models.Segment{
			Text: pageTexts[pageNum],
			Page: pageNum,
		})
	}

	l.logger.Debug().
		Str("path", filepath.Base(path)).
		Int("pages", pageCount).
		Msg("Extracted PDF pages")

	return segments, nil
}
