package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
	"github.com/ternarybob/responsa/internal/services/loader"
)

// collectionName is the logical name of the single document collection.
// Each ingest writes a fresh version of it and swaps the active pointer.
const collectionName = "documents"

// Service runs the ingestion pipeline: persist the upload to a scratch
// file, extract segments with the loader for the declared type, chunk,
// embed, and replace the active collection.
type Service struct {
	loaders  *loader.Registry
	chunker  interfaces.Chunker
	embedder interfaces.EmbeddingService
	index    interfaces.VectorIndex
	logger   arbor.ILogger
	tempDir  string
}

// Compile-time interface assertion
var _ interfaces.IngestionService = (*Service)(nil)

// NewService creates the ingestion service. tempDir may be empty, in
// which case the OS temp directory is used for uploaded files.
func NewService(loaders *loader.Registry, chunker interfaces.Chunker, embedder interfaces.EmbeddingService, index interfaces.VectorIndex, tempDir string, logger arbor.ILogger) *Service {
	return &Service{
		loaders:  loaders,
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		logger:   logger,
		tempDir:  tempDir,
	}
}

// Ingest processes one uploaded document and returns the number of chunks
// created. The previous collection keeps serving queries until the new one
// is fully populated. Failures come back as IngestionError with the step
// that failed.
func (s *Service) Ingest(ctx context.Context, content []byte, filename string, docType models.DocumentType) (int, error) {
	startTime := time.Now()

	docLoader, err := s.loaders.ForType(docType)
	if err != nil {
		return 0, common.NewIngestionError("load", err)
	}

	path, cleanup, err := s.writeTempFile(content, filename)
	if err != nil {
		return 0, common.NewIngestionError("load", err)
	}
	defer cleanup()

	segments, err := docLoader.Load(ctx, path)
	if err != nil {
		return 0, common.NewIngestionError("load", err)
	}

	// Ordinals are global across segments so retrieval ties resolve by
	// document order.
	var chunks []models.Chunk
	for _, segment := range segments {
		for _, chunk := range s.chunker.Split(segment) {
			chunk.Ordinal = len(chunks)
			chunks = append(chunks, chunk)
		}
	}

	if len(chunks) == 0 {
		return 0, common.NewIngestionError("chunk", fmt.Errorf("document %s produced no chunks", filename))
	}

	vectors := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return 0, common.NewIngestionError("embed", fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err))
		}
		vectors[i] = vector
	}

	if err := s.index.ReplaceCollection(ctx, collectionName, chunks, vectors); err != nil {
		return 0, common.NewIngestionError("index", err)
	}

	s.logger.Info().
		Str("filename", filename).
		Str("document_type", string(docType)).
		Int("segments", len(segments)).
		Int("chunks", len(chunks)).
		Dur("duration", time.Since(startTime)).
		Msg("Document ingested")

	return len(chunks), nil
}

// writeTempFile persists the upload for loaders that need a file path.
// The returned cleanup always removes the file, including on failures
// later in the pipeline.
func (s *Service) writeTempFile(content []byte, filename string) (string, func(), error) {
	pattern := "upload-*" + sanitizeExt(filename)
	f, err := os.CreateTemp(s.tempDir, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(path)
		return "", nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	return path, func() { os.Remove(path) }, nil
}

// sanitizeExt keeps the upload's extension on the temp file so tools that
// sniff by extension behave, dropping anything that is not a simple suffix.
func sanitizeExt(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) > 10 {
		return ""
	}
	return ext
}
