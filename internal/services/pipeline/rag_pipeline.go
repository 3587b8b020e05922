package pipeline

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
)

// Span names of the query trace tree. Retrieval and generation are
// siblings under the pipeline root.
const (
	spanPipeline   = "rag-pipeline"
	spanRetrieval  = "retrieval"
	spanGeneration = "synthesis-generation"
)

// Pipeline answers questions over the active collection: embed the
// question, retrieve the nearest chunks, render them into the prompt
// template, and generate an answer at temperature 0.
//
// Failures are not retried. They surface as PipelineError carrying the
// stage that failed.
type Pipeline struct {
	embedder  interfaces.EmbeddingService
	generator interfaces.GenerationService
	index     interfaces.VectorIndex
	recorder  interfaces.TraceRecorder
	config    *common.PipelineConfig
	logger    arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.RagPipeline = (*Pipeline)(nil)

// NewPipeline creates the query pipeline. The prompt template was
// validated at startup, so rendering here cannot fail.
func NewPipeline(embedder interfaces.EmbeddingService, generator interfaces.GenerationService, index interfaces.VectorIndex, recorder interfaces.TraceRecorder, config *common.PipelineConfig, logger arbor.ILogger) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		generator: generator,
		index:     index,
		recorder:  recorder,
		config:    config,
		logger:    logger,
	}
}

// Answer runs the full query pipeline for one question. An empty active
// collection is not an error; the model answers from an empty context,
// which the template steers toward a refusal.
func (p *Pipeline) Answer(ctx context.Context, question string) (*models.Answer, error) {
	ctx, root := p.recorder.StartTrace(ctx, spanPipeline, map[string]any{"question": question})

	retrieved, err := p.retrieve(ctx, question)
	if err != nil {
		root.Fail(err)
		return nil, err
	}

	answer, err := p.generate(ctx, question, retrieved)
	if err != nil {
		root.Fail(err)
		return nil, err
	}

	root.End(map[string]any{
		"answer":  answer.Text,
		"sources": len(answer.Sources),
	})

	return answer, nil
}

// retrieve embeds the question and fetches the top-K chunks, recorded
// under its own span.
func (p *Pipeline) retrieve(ctx context.Context, question string) ([]models.RetrievedChunk, error) {
	_, span := p.recorder.StartSpan(ctx, spanRetrieval, map[string]any{
		"question": question,
		"top_k":    p.config.TopK,
	})

	vector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		wrapped := common.NewPipelineError("retrieval", err)
		span.Fail(wrapped)
		return nil, wrapped
	}

	retrieved, err := p.index.Retrieve(ctx, vector, p.config.TopK)
	if err != nil {
		wrapped := common.NewPipelineError("retrieval", err)
		span.Fail(wrapped)
		return nil, wrapped
	}

	texts := make([]string, len(retrieved))
	for i, rc := range retrieved {
		texts[i] = rc.Text
	}
	span.End(map[string]any{
		"chunks": texts,
		"count":  len(retrieved),
	})

	p.logger.Debug().
		Int("retrieved", len(retrieved)).
		Msg("Retrieval completed")

	return retrieved, nil
}

// generate renders the prompt from the retrieved chunks and asks the
// generation model, recorded as a generation span with model metadata.
func (p *Pipeline) generate(ctx context.Context, question string, retrieved []models.RetrievedChunk) (*models.Answer, error) {
	prompt := p.renderPrompt(question, retrieved)

	_, span := p.recorder.StartSpan(ctx, spanGeneration, map[string]any{"prompt": prompt})

	text, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		wrapped := common.NewPipelineError("generation", err)
		span.Fail(wrapped)
		return nil, wrapped
	}

	span.EndGeneration(text, p.generator.ModelName(), p.generator.Temperature())

	return &models.Answer{
		Text:    text,
		Sources: retrieved,
	}, nil
}

// renderPrompt joins the retrieved chunk texts with the configured
// separator and substitutes both template placeholders.
func (p *Pipeline) renderPrompt(question string, retrieved []models.RetrievedChunk) string {
	texts := make([]string, len(retrieved))
	for i, rc := range retrieved {
		texts[i] = rc.Text
	}
	contextBlock := strings.Join(texts, p.config.ContextSeparator)

	prompt := strings.ReplaceAll(p.config.PromptTemplate, common.PromptContextPlaceholder, contextBlock)
	return strings.ReplaceAll(prompt, common.PromptQuestionPlaceholder, question)
}
