package interfaces

import (
	"context"

	"github.com/ternarybob/responsa/internal/models"
)

// RagPipeline answers a question by retrieving relevant chunks from the
// vector index and asking the generation model to synthesize an answer
// grounded in them. Each query records a span tree (pipeline -> retrieval ->
// generation) via the trace recorder.
type RagPipeline interface {
	Answer(ctx context.Context, question string) (*models.Answer, error)
}
