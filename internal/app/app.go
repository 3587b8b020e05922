package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/ternarybob/responsa/internal/handlers"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/services/chunker"
	"github.com/ternarybob/responsa/internal/services/index"
	"github.com/ternarybob/responsa/internal/services/ingest"
	"github.com/ternarybob/responsa/internal/services/llm"
	"github.com/ternarybob/responsa/internal/services/loader"
	"github.com/ternarybob/responsa/internal/services/pipeline"
	"github.com/ternarybob/responsa/internal/services/tracing"
	"github.com/ternarybob/responsa/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	// Model services
	GeminiService     *llm.GeminiService
	EmbeddingService  interfaces.EmbeddingService
	GenerationService interfaces.GenerationService

	// Pipeline components
	VectorIndex      interfaces.VectorIndex
	TraceRecorder    interfaces.TraceRecorder
	IngestionService interfaces.IngestionService
	RagPipeline      interfaces.RagPipeline

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	IngestHandler *handlers.IngestHandler
	QueryHandler  *handlers.QueryHandler
}

// New creates the application with all services wired in dependency order:
// storage, model clients, vector index, tracing, then the ingestion and
// query pipelines and their handlers.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.StorageManager = storageManager

	geminiService, err := llm.NewGeminiService(&config.Gemini, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize Gemini service: %w", err)
	}
	a.GeminiService = geminiService
	a.EmbeddingService = geminiService.Embedder()

	generationService, err := llm.NewGenerationService(config, geminiService, logger)
	if err != nil {
		geminiService.Close()
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize generation service: %w", err)
	}
	a.GenerationService = generationService

	vectorIndex, err := index.NewBadgerVectorIndex(storageManager.ChunkStorage(), logger)
	if err != nil {
		a.closePartial()
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	a.VectorIndex = vectorIndex

	traceRecorder, err := tracing.NewRecorder(&config.Langfuse, logger)
	if err != nil {
		a.closePartial()
		return nil, fmt.Errorf("failed to initialize trace recorder: %w", err)
	}
	a.TraceRecorder = traceRecorder

	loaders := loader.NewRegistry(logger)
	splitter := chunker.New(config.Ingest.ChunkSize, config.Ingest.ChunkOverlap)

	a.IngestionService = ingest.NewService(loaders, splitter, a.EmbeddingService, vectorIndex, config.Ingest.TempDir, logger)
	a.RagPipeline = pipeline.NewPipeline(a.EmbeddingService, generationService, vectorIndex, traceRecorder, &config.Pipeline, logger)

	a.APIHandler = handlers.NewAPIHandler(logger)
	a.IngestHandler = handlers.NewIngestHandler(a.IngestionService, logger)
	a.QueryHandler = handlers.NewQueryHandler(a.RagPipeline, logger)

	logger.Info().
		Str("provider", string(config.LLM.DefaultProvider)).
		Str("generation_model", generationService.ModelName()).
		Int("top_k", config.Pipeline.TopK).
		Msg("Application initialized")

	return a, nil
}

// Close shuts down components in reverse dependency order. Trace flush
// gets a bounded window so shutdown cannot hang on a dead backend.
func (a *App) Close() error {
	var firstErr error

	if a.TraceRecorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.TraceRecorder.Flush(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Trace flush on shutdown failed")
		}
		cancel()
		if err := a.TraceRecorder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.GenerationService != nil && a.GenerationService != interfaces.GenerationService(a.GeminiService) {
		if err := a.GenerationService.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.GeminiService != nil {
		if err := a.GeminiService.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	a.Logger.Info().Msg("Application closed")
	return firstErr
}

// closePartial tears down whatever New managed to build before failing.
func (a *App) closePartial() {
	if a.GenerationService != nil && a.GenerationService != interfaces.GenerationService(a.GeminiService) {
		a.GenerationService.Close()
	}
	if a.GeminiService != nil {
		a.GeminiService.Close()
	}
	if a.StorageManager != nil {
		a.StorageManager.Close()
	}
}
