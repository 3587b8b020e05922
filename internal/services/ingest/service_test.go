package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/ternarybob/responsa/internal/models"
	"github.com/ternarybob/responsa/internal/services/chunker"
	"github.com/ternarybob/responsa/internal/services/loader"
)

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1}, nil
}
func (f *fakeEmbedder) Dimension() int                        { return 2 }
func (f *fakeEmbedder) ModelName() string                     { return "fake-embed" }
func (f *fakeEmbedder) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                          { return nil }

type captureIndex struct {
	name    string
	chunks  []models.Chunk
	vectors [][]float32
	err     error
}

func (c *captureIndex) ReplaceCollection(ctx context.Context, name string, chunks []models.Chunk, vectors [][]float32) error {
	if c.err != nil {
		return c.err
	}
	c.name = name
	c.chunks = chunks
	c.vectors = vectors
	return nil
}
func (c *captureIndex) Retrieve(ctx context.Context, vector []float32, k int) ([]models.RetrievedChunk, error) {
	return nil, nil
}
func (c *captureIndex) Count(ctx context.Context) (int, error) { return len(c.chunks), nil }

func newTestService(t *testing.T, embedder *fakeEmbedder, idx *captureIndex) (*Service, string) {
	t.Helper()

	tempDir := t.TempDir()
	logger := common.GetLogger()
	svc := NewService(loader.NewRegistry(logger), chunker.New(1000, 200), embedder, idx, tempDir, logger)
	return svc, tempDir
}

func threePagePDF(t *testing.T) []byte {
	t.Helper()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for page := 1; page <= 3; page++ {
		pdf.AddPage()
		pdf.Write(5, fmt.Sprintf("Content of page %d in the uploaded report.", page))
	}

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func TestIngest_TextDocument(t *testing.T) {
	embedder := &fakeEmbedder{}
	idx := &captureIndex{}
	svc, _ := newTestService(t, embedder, idx)

	content := []byte(strings.Repeat("a", 2500))
	count, err := svc.Ingest(context.Background(), content, "doc.txt", models.DocumentTypeText)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.Equal(t, "documents", idx.name)
	require.Len(t, idx.chunks, 3)
	require.Len(t, idx.vectors, 3)
	assert.Equal(t, 3, embedder.calls)

	for i, chunk := range idx.chunks {
		assert.Equal(t, i, chunk.Ordinal)
		assert.Equal(t, 0, chunk.Page)
	}
}

func TestIngest_TempFileRemoved(t *testing.T) {
	svc, tempDir := newTestService(t, &fakeEmbedder{}, &captureIndex{})

	_, err := svc.Ingest(context.Background(), []byte("some text content"), "doc.txt", models.DocumentTypeText)
	require.NoError(t, err)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file was not removed")
}

func TestIngest_TempFileRemovedOnFailure(t *testing.T) {
	svc, tempDir := newTestService(t, &fakeEmbedder{err: errors.New("quota exhausted")}, &captureIndex{})

	_, err := svc.Ingest(context.Background(), []byte("some text content"), "doc.txt", models.DocumentTypeText)
	require.Error(t, err)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file was not removed after failure")
}

func TestIngest_ErrorSteps(t *testing.T) {
	tests := []struct {
		name     string
		embedder *fakeEmbedder
		idx      *captureIndex
		content  []byte
		docType  models.DocumentType
		wantStep string
	}{
		{
			name:     "unsupported type",
			embedder: &fakeEmbedder{},
			idx:      &captureIndex{},
			content:  []byte("x"),
			docType:  models.DocumentType("docx"),
			wantStep: "load",
		},
		{
			name:     "whitespace only document",
			embedder: &fakeEmbedder{},
			idx:      &captureIndex{},
			content:  []byte("   \n\t  "),
			docType:  models.DocumentTypeText,
			wantStep: "chunk",
		},
		{
			name:     "embedding failure",
			embedder: &fakeEmbedder{err: errors.New("api down")},
			idx:      &captureIndex{},
			content:  []byte("real content"),
			docType:  models.DocumentTypeText,
			wantStep: "embed",
		},
		{
			name:     "index failure",
			embedder: &fakeEmbedder{},
			idx:      &captureIndex{err: errors.New("disk full")},
			content:  []byte("real content"),
			docType:  models.DocumentTypeText,
			wantStep: "index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, tt.embedder, tt.idx)

			_, err := svc.Ingest(context.Background(), tt.content, "doc", tt.docType)
			require.Error(t, err)

			var ingErr *common.IngestionError
			require.ErrorAs(t, err, &ingErr)
			assert.Equal(t, tt.wantStep, ingErr.Step)
		})
	}
}

func TestIngest_PDFPerPage(t *testing.T) {
	idx := &captureIndex{}
	svc, _ := newTestService(t, &fakeEmbedder{}, idx)

	count, err := svc.Ingest(context.Background(), threePagePDF(t), "report.pdf", models.DocumentTypePDF)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	pages := make([]int, len(idx.chunks))
	for i, chunk := range idx.chunks {
		pages[i] = chunk.Page
		assert.NotEmpty(t, chunk.Text)
	}
	assert.Equal(t, []int{1, 2, 3}, pages)
}

func TestIngest_MarkdownStripsSyntax(t *testing.T) {
	idx := &captureIndex{}
	svc, _ := newTestService(t, &fakeEmbedder{}, idx)

	content := []byte("# Quarterly Report\n\nRevenue grew by **12 percent** this quarter.\n")
	count, err := svc.Ingest(context.Background(), content, "report.md", models.DocumentTypeMarkdown)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	text := idx.chunks[0].Text
	assert.Contains(t, text, "Quarterly Report")
	assert.Contains(t, text, "12 percent")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "**")
}

func TestIngest_HTMLStripsMarkup(t *testing.T) {
	idx := &captureIndex{}
	svc, _ := newTestService(t, &fakeEmbedder{}, idx)

	content := []byte(`<html><head><script>var x = 1;</script></head><body><p>Hello from the page.</p></body></html>`)
	count, err := svc.Ingest(context.Background(), content, "page.html", models.DocumentTypeHTML)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	text := idx.chunks[0].Text
	assert.Contains(t, text, "Hello from the page.")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "<p>")
}
