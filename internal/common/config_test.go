package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig_IsValid(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, 1000, config.Ingest.ChunkSize)
	assert.Equal(t, 200, config.Ingest.ChunkOverlap)
	assert.Equal(t, 4, config.Pipeline.TopK)
	assert.Equal(t, "\n\n---\n\n", config.Pipeline.ContextSeparator)
	assert.Equal(t, 768, config.Gemini.EmbedDimension)
	assert.Equal(t, LLMProviderGemini, config.LLM.DefaultProvider)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "overlap equals size",
			mutate: func(c *Config) { c.Ingest.ChunkOverlap = c.Ingest.ChunkSize },
		},
		{
			name:   "overlap exceeds size",
			mutate: func(c *Config) { c.Ingest.ChunkOverlap = c.Ingest.ChunkSize + 1 },
		},
		{
			name:   "unknown provider",
			mutate: func(c *Config) { c.LLM.DefaultProvider = "openai" },
		},
		{
			name:   "template missing context placeholder",
			mutate: func(c *Config) { c.Pipeline.PromptTemplate = "Question: {question}" },
		},
		{
			name:   "template missing question placeholder",
			mutate: func(c *Config) { c.Pipeline.PromptTemplate = "Context: {context}" },
		},
		{
			name:   "zero top_k",
			mutate: func(c *Config) { c.Pipeline.TopK = 0 },
		},
		{
			name:   "invalid port",
			mutate: func(c *Config) { c.Server.Port = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestLoadFromFiles_LayersAndOverrides(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	require.NoError(t, os.WriteFile(base, []byte(`
[server]
port = 9001

[ingest]
chunk_size = 800
`), 0644))

	override := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(override, []byte(`
[server]
port = 9002
`), 0644))

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)

	// Later file wins, untouched keys keep earlier/default values
	assert.Equal(t, 9002, config.Server.Port)
	assert.Equal(t, 800, config.Ingest.ChunkSize)
	assert.Equal(t, 200, config.Ingest.ChunkOverlap)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("RESPONSA_SERVER_PORT", "9100")
	t.Setenv("RESPONSA_TOP_K", "7")
	t.Setenv("RESPONSA_GEMINI_API_KEY", "key-from-env")
	t.Setenv("LANGFUSE_PUBLIC_KEY", "pk-env")
	t.Setenv("LANGFUSE_SECRET_KEY", "sk-env")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 9100, config.Server.Port)
	assert.Equal(t, 7, config.Pipeline.TopK)
	assert.Equal(t, "key-from-env", config.Gemini.APIKey)
	assert.True(t, config.Langfuse.Enabled)
	assert.Equal(t, "pk-env", config.Langfuse.PublicKey)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 9200, "0.0.0.0")
	assert.Equal(t, 9200, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)

	// Zero values leave config untouched
	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 9200, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}
