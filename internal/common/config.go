package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Ingest      IngestConfig    `toml:"ingest"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Langfuse    LangfuseConfig  `toml:"langfuse"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
	GCSchedule     string `toml:"gc_schedule"`              // Cron schedule for value-log GC (empty = disabled)
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// IngestConfig controls document chunking during ingestion
type IngestConfig struct {
	ChunkSize    int    `toml:"chunk_size" validate:"gt=0"`     // Max chunk length in characters
	ChunkOverlap int    `toml:"chunk_overlap" validate:"gte=0"` // Characters shared between consecutive chunks
	TempDir      string `toml:"temp_dir"`                       // Scratch directory for uploaded files (default: os temp)
}

// PipelineConfig controls retrieval and prompt assembly for queries
type PipelineConfig struct {
	TopK             int    `toml:"top_k" validate:"gt=0"` // Chunks retrieved per query
	ContextSeparator string `toml:"context_separator"`     // Joins retrieved chunk texts
	PromptTemplate   string `toml:"prompt_template"`       // Must contain {context} and {question}
}

// GeminiConfig contains Google Gemini API configuration. Gemini always serves
// embeddings; it also serves generation when llm.default_provider = "gemini".
type GeminiConfig struct {
	APIKey         string `toml:"api_key"`         // Google Gemini API key
	EmbedModel     string `toml:"embed_model"`     // Embedding model (default: "gemini-embedding-001")
	EmbedDimension int    `toml:"embed_dimension"` // Embedding vector length (default: 768)
	ChatModel      string `toml:"chat_model"`      // Generation model (default: "gemini-2.0-flash")
	Timeout        string `toml:"timeout"`         // Per-call timeout as duration string (default: "2m")
	RateLimit      string `toml:"rate_limit"`      // Minimum interval between API calls (default: "100ms")
}

// ClaudeConfig contains Anthropic Claude API configuration for generation
type ClaudeConfig struct {
	APIKey    string `toml:"api_key"`    // Anthropic API key
	Model     string `toml:"model"`      // Generation model (default: "claude-haiku-3-5-20241022")
	MaxTokens int    `toml:"max_tokens"` // Maximum tokens in response (default: 4096)
	Timeout   string `toml:"timeout"`    // Per-call timeout as duration string (default: "2m")
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig selects the generation provider
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
}

// LangfuseConfig contains tracing backend configuration. When disabled or
// missing credentials, a no-op recorder is used.
type LangfuseConfig struct {
	Enabled       bool   `toml:"enabled"`
	Host          string `toml:"host"`           // e.g. "https://cloud.langfuse.com"
	PublicKey     string `toml:"public_key"`
	SecretKey     string `toml:"secret_key"`
	FlushInterval string `toml:"flush_interval"` // Background flush interval (default: "3s")
	BufferSize    int    `toml:"buffer_size"`    // Pending event buffer (default: 512)
}

// Placeholders the prompt template must contain. Substitution is plain string
// replacement; the template is validated once at startup.
const (
	PromptContextPlaceholder  = "{context}"
	PromptQuestionPlaceholder = "{question}"
)

// DefaultPromptTemplate instructs the model to refuse rather than fabricate
// when the retrieved context is insufficient.
const DefaultPromptTemplate = `Use the following pieces of context to answer the question at the end.
If the context does not contain the answer, say that you cannot answer based on the available documents. Do not make up an answer.

Context:
{context}

Question: {question}

Answer:`

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:       "./data",
				GCSchedule: "@every 10m",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Ingest: IngestConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Pipeline: PipelineConfig{
			TopK:             4,
			ContextSeparator: "\n\n---\n\n",
			PromptTemplate:   DefaultPromptTemplate,
		},
		Gemini: GeminiConfig{
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
			ChatModel:      "gemini-2.0-flash",
			Timeout:        "2m",
			RateLimit:      "100ms",
		},
		Claude: ClaudeConfig{
			Model:     "claude-haiku-3-5-20241022",
			MaxTokens: 4096,
			Timeout:   "2m",
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Langfuse: LangfuseConfig{
			Enabled:       false,
			Host:          "https://cloud.langfuse.com",
			FlushInterval: "3s",
			BufferSize:    512,
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2
// -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks structural constraints and the prompt template contract.
// A malformed template is a startup error, never a runtime one.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap (%d) must be smaller than ingest.chunk_size (%d)", c.Ingest.ChunkOverlap, c.Ingest.ChunkSize)
	}

	switch c.LLM.DefaultProvider {
	case LLMProviderGemini, LLMProviderClaude:
	default:
		return fmt.Errorf("llm.default_provider must be %q or %q, got %q", LLMProviderGemini, LLMProviderClaude, c.LLM.DefaultProvider)
	}

	if !strings.Contains(c.Pipeline.PromptTemplate, PromptContextPlaceholder) {
		return fmt.Errorf("pipeline.prompt_template is missing the %s placeholder", PromptContextPlaceholder)
	}
	if !strings.Contains(c.Pipeline.PromptTemplate, PromptQuestionPlaceholder) {
		return fmt.Errorf("pipeline.prompt_template is missing the %s placeholder", PromptQuestionPlaceholder)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RESPONSA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("RESPONSA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("RESPONSA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("RESPONSA_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("RESPONSA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("RESPONSA_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Ingest configuration
	if size := os.Getenv("RESPONSA_CHUNK_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			config.Ingest.ChunkSize = n
		}
	}
	if overlap := os.Getenv("RESPONSA_CHUNK_OVERLAP"); overlap != "" {
		if n, err := strconv.Atoi(overlap); err == nil {
			config.Ingest.ChunkOverlap = n
		}
	}

	// Pipeline configuration
	if topK := os.Getenv("RESPONSA_TOP_K"); topK != "" {
		if n, err := strconv.Atoi(topK); err == nil {
			config.Pipeline.TopK = n
		}
	}

	// LLM provider credentials
	if key := os.Getenv("RESPONSA_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("RESPONSA_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if provider := os.Getenv("RESPONSA_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}

	// Tracing backend
	if host := os.Getenv("LANGFUSE_HOST"); host != "" {
		config.Langfuse.Host = host
	}
	if key := os.Getenv("LANGFUSE_PUBLIC_KEY"); key != "" {
		config.Langfuse.PublicKey = key
		config.Langfuse.Enabled = true
	}
	if key := os.Getenv("LANGFUSE_SECRET_KEY"); key != "" {
		config.Langfuse.SecretKey = key
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
