package interfaces

import "context"

// EmbeddingService maps text to a fixed-length vector. Embed is pure (no
// side effects beyond the remote call) and safe for concurrent use.
type EmbeddingService interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding vector length.
	Dimension() int

	// ModelName returns the embedding model identifier for span metadata.
	ModelName() string

	// HealthCheck verifies the service can reach its backing model.
	HealthCheck(ctx context.Context) error

	// Close releases client resources.
	Close() error
}

// GenerationService synthesizes natural-language text from a prompt.
// Calls may be slow (seconds); implementations enforce a per-call timeout
// from configuration.
type GenerationService interface {
	// Generate returns the model's completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the generation model identifier for span metadata.
	ModelName() string

	// Temperature returns the sampling temperature used for generation.
	Temperature() float32

	// HealthCheck verifies the service can reach its backing model.
	HealthCheck(ctx context.Context) error

	// Close releases client resources.
	Close() error
}
