package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}
func (f *fakeEmbedder) Dimension() int                        { return len(f.vector) }
func (f *fakeEmbedder) ModelName() string                     { return "fake-embed" }
func (f *fakeEmbedder) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                          { return nil }

type fakeGenerator struct {
	answer     string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.answer, f.err
}
func (f *fakeGenerator) ModelName() string                     { return "fake-model" }
func (f *fakeGenerator) Temperature() float32                  { return 0 }
func (f *fakeGenerator) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeGenerator) Close() error                          { return nil }

type fakeIndex struct {
	results []models.RetrievedChunk
	err     error
	lastK   int
}

func (f *fakeIndex) ReplaceCollection(ctx context.Context, name string, chunks []models.Chunk, vectors [][]float32) error {
	return nil
}
func (f *fakeIndex) Retrieve(ctx context.Context, vector []float32, k int) ([]models.RetrievedChunk, error) {
	f.lastK = k
	return f.results, f.err
}
func (f *fakeIndex) Count(ctx context.Context) (int, error) { return len(f.results), nil }

// recordingSpan captures how the span was closed.
type recordingSpan struct {
	name   string
	ended  bool
	failed bool
	genCall bool
	model  string
	err    error
}

func (s *recordingSpan) End(output any) { s.ended = true }
func (s *recordingSpan) EndGeneration(output any, model string, temperature float32) {
	s.ended = true
	s.genCall = true
	s.model = model
}
func (s *recordingSpan) Fail(err error) {
	s.ended = true
	s.failed = true
	s.err = err
}

// recordingRecorder captures the span tree without a backend.
type recordingRecorder struct {
	spans []*recordingSpan
}

func (r *recordingRecorder) StartTrace(ctx context.Context, name string, input any) (context.Context, interfaces.SpanHandle) {
	span := &recordingSpan{name: name}
	r.spans = append(r.spans, span)
	return ctx, span
}
func (r *recordingRecorder) StartSpan(ctx context.Context, name string, input any) (context.Context, interfaces.SpanHandle) {
	span := &recordingSpan{name: name}
	r.spans = append(r.spans, span)
	return ctx, span
}
func (r *recordingRecorder) Flush(ctx context.Context) error { return nil }
func (r *recordingRecorder) Close() error                    { return nil }

func (r *recordingRecorder) byName(name string) *recordingSpan {
	for _, s := range r.spans {
		if s.name == name {
			return s
		}
	}
	return nil
}

func testConfig() *common.PipelineConfig {
	return &common.PipelineConfig{
		TopK:             4,
		ContextSeparator: "\n\n---\n\n",
		PromptTemplate:   common.DefaultPromptTemplate,
	}
}

func retrieved(texts ...string) []models.RetrievedChunk {
	chunks := make([]models.RetrievedChunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.RetrievedChunk{
			Chunk: models.Chunk{Text: text, Ordinal: i, Page: i + 1},
			Score: 1 - float32(i)*0.1,
		}
	}
	return chunks
}

func TestAnswer_Success(t *testing.T) {
	generator := &fakeGenerator{answer: "The answer."}
	index := &fakeIndex{results: retrieved("chunk one", "chunk two")}
	recorder := &recordingRecorder{}

	p := NewPipeline(&fakeEmbedder{vector: []float32{1, 0}}, generator, index, recorder, testConfig(), common.GetLogger())

	answer, err := p.Answer(context.Background(), "what is it?")
	require.NoError(t, err)
	assert.Equal(t, "The answer.", answer.Text)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "chunk one", answer.Sources[0].Text)
	assert.Equal(t, 4, index.lastK)

	// The prompt carries both chunks joined by the separator, and the question
	assert.Contains(t, generator.lastPrompt, "chunk one\n\n---\n\nchunk two")
	assert.Contains(t, generator.lastPrompt, "what is it?")
	assert.False(t, strings.Contains(generator.lastPrompt, common.PromptContextPlaceholder))
	assert.False(t, strings.Contains(generator.lastPrompt, common.PromptQuestionPlaceholder))
}

func TestAnswer_RecordsSpanTree(t *testing.T) {
	recorder := &recordingRecorder{}
	p := NewPipeline(&fakeEmbedder{vector: []float32{1}}, &fakeGenerator{answer: "ok"}, &fakeIndex{results: retrieved("x")}, recorder, testConfig(), common.GetLogger())

	_, err := p.Answer(context.Background(), "q")
	require.NoError(t, err)

	require.Len(t, recorder.spans, 3)
	assert.Equal(t, spanPipeline, recorder.spans[0].name)
	assert.Equal(t, spanRetrieval, recorder.spans[1].name)
	assert.Equal(t, spanGeneration, recorder.spans[2].name)

	for _, span := range recorder.spans {
		assert.True(t, span.ended, "span %s was not closed", span.name)
		assert.False(t, span.failed, "span %s was failed", span.name)
	}

	generation := recorder.byName(spanGeneration)
	assert.True(t, generation.genCall)
	assert.Equal(t, "fake-model", generation.model)
}

func TestAnswer_EmptyRetrieval(t *testing.T) {
	generator := &fakeGenerator{answer: "cannot answer"}
	p := NewPipeline(&fakeEmbedder{vector: []float32{1}}, generator, &fakeIndex{}, &recordingRecorder{}, testConfig(), common.GetLogger())

	answer, err := p.Answer(context.Background(), "anything?")
	require.NoError(t, err)
	assert.Empty(t, answer.Sources)

	// Generation still runs, with an empty context block
	assert.Contains(t, generator.lastPrompt, "Context:\n\n")
}

func TestAnswer_EmbedFailure(t *testing.T) {
	recorder := &recordingRecorder{}
	p := NewPipeline(&fakeEmbedder{err: errors.New("quota")}, &fakeGenerator{}, &fakeIndex{}, recorder, testConfig(), common.GetLogger())

	_, err := p.Answer(context.Background(), "q")
	require.Error(t, err)

	var pipeErr *common.PipelineError
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, "retrieval", pipeErr.Stage)

	assert.True(t, recorder.byName(spanRetrieval).failed)
	assert.True(t, recorder.byName(spanPipeline).failed)
	assert.Nil(t, recorder.byName(spanGeneration))
}

func TestAnswer_GenerationFailure(t *testing.T) {
	recorder := &recordingRecorder{}
	p := NewPipeline(&fakeEmbedder{vector: []float32{1}}, &fakeGenerator{err: errors.New("model down")}, &fakeIndex{results: retrieved("x")}, recorder, testConfig(), common.GetLogger())

	_, err := p.Answer(context.Background(), "q")
	require.Error(t, err)

	var pipeErr *common.PipelineError
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, "generation", pipeErr.Stage)

	assert.False(t, recorder.byName(spanRetrieval).failed)
	assert.True(t, recorder.byName(spanGeneration).failed)
	assert.True(t, recorder.byName(spanPipeline).failed)
}

func TestAnswer_RetrieveFailure(t *testing.T) {
	p := NewPipeline(&fakeEmbedder{vector: []float32{1}}, &fakeGenerator{}, &fakeIndex{err: errors.New("storage gone")}, &recordingRecorder{}, testConfig(), common.GetLogger())

	_, err := p.Answer(context.Background(), "q")
	require.Error(t, err)

	var pipeErr *common.PipelineError
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, "retrieval", pipeErr.Stage)
}
