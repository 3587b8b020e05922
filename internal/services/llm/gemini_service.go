package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/ternarybob/responsa/internal/interfaces"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiService provides embedding and answer generation using Gemini
// models. It always serves embeddings; generation runs through it only
// when gemini is the configured provider.
//
// Generation uses temperature 0 so repeated questions over the same
// indexed content produce stable answers.
type GeminiService struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// Compile-time interface assertions
var (
	_ interfaces.GenerationService = (*GeminiService)(nil)
	_ interfaces.EmbeddingService  = (*geminiEmbedder)(nil)
)

// NewGeminiService creates a new Gemini service instance.
func NewGeminiService(config *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required (set via GOOGLE_API_KEY, RESPONSA_GEMINI_API_KEY, or gemini.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	rateLimit, err := time.ParseDuration(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit duration '%s': %w", config.RateLimit, err)
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  config,
		logger:  logger,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(rateLimit), 1),
		timeout: timeout,
	}

	logger.Info().
		Str("embed_model", config.EmbedModel).
		Str("chat_model", config.ChatModel).
		Int("embed_dimension", config.EmbedDimension).
		Dur("timeout", timeout).
		Msg("Gemini service initialized successfully")

	return service, nil
}

// Embed generates an embedding vector for the given text with the
// configured output dimensionality.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outputDim := int32(s.config.EmbedDimension)
	embeddingConfig := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	result, err := s.client.Models.EmbedContent(timeoutCtx, s.config.EmbedModel, []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, embeddingConfig)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("text_length", len(text)).
			Msg("Embedding generation failed")
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	var embedding []float32
	if result != nil && len(result.Embeddings) > 0 {
		embedding = result.Embeddings[0].Values
	}
	if embedding == nil {
		return nil, fmt.Errorf("no embedding returned from API")
	}

	if len(embedding) != s.config.EmbedDimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.config.EmbedDimension, len(embedding))
	}

	return embedding, nil
}

// Dimension returns the configured embedding dimensionality.
func (s *GeminiService) Dimension() int {
	return s.config.EmbedDimension
}

// Generate produces an answer for the rendered prompt at temperature 0.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty for generation")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.Temperature()),
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.ChatModel, contents, config)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int("prompt_length", len(prompt)).
			Msg("Generation failed")
		return "", fmt.Errorf("generation failed: %w", err)
	}

	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from chat model")
	}

	s.logger.Debug().
		Int("prompt_length", len(prompt)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Generation completed")

	return response.String(), nil
}

// ModelName returns the chat model identifier.
func (s *GeminiService) ModelName() string {
	return s.config.ChatModel
}

// Embedder returns the embedding view of this service. It shares the
// underlying client and rate limiter but reports the embedding model
// name, which differs from the chat model.
func (s *GeminiService) Embedder() interfaces.EmbeddingService {
	return &geminiEmbedder{svc: s}
}

// geminiEmbedder adapts GeminiService to the embedding interface.
type geminiEmbedder struct {
	svc *GeminiService
}

func (e *geminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.svc.Embed(ctx, text)
}

func (e *geminiEmbedder) Dimension() int {
	return e.svc.Dimension()
}

func (e *geminiEmbedder) ModelName() string {
	return e.svc.config.EmbedModel
}

func (e *geminiEmbedder) HealthCheck(ctx context.Context) error {
	return e.svc.HealthCheck(ctx)
}

// Close is a no-op; the owning GeminiService closes the shared client.
func (e *geminiEmbedder) Close() error {
	return nil
}

// Temperature returns the generation temperature, fixed at 0.
func (s *GeminiService) Temperature() float32 {
	return 0
}

// HealthCheck verifies the genai client is initialized. It stays local
// so /health does not spend quota or block on the network.
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("genai client is not initialized")
	}
	return nil
}

// Close releases the client reference. genai.Client has no explicit
// cleanup beyond this.
func (s *GeminiService) Close() error {
	s.logger.Debug().Msg("Closing Gemini service")
	s.client = nil
	return nil
}
