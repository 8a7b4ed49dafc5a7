package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
server:
  host: "0.0.0.0"
  port: 9090

llm:
  base_url: "http://localhost:11434"
  model: "mistral"
  embed_model: "nomic-embed-text:latest"
  max_tokens: 1000
  temperature: 0.5

database:
  url: "postgres://localhost:5432/docsift"
  text_index: "docs"
  vector_dim: 1536
  search_k: 5
  candidate_pool: 50

chunker:
  strategy: "window"
  chunk_size: 500
  chunk_overlap: 100
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "mistral", config.LLM.Model)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "postgres://localhost:5432/docsift", config.Database.URL)
	assert.Equal(t, "docs", config.Database.TextIndex)
	assert.Equal(t, 1536, config.Database.VectorDim)
	assert.Equal(t, "window", config.Chunker.Strategy)
	assert.Equal(t, 500, config.Chunker.ChunkSize)

	// Unset values pick up defaults.
	assert.Equal(t, 50, config.Chunker.MaxWords)
}

func TestDefaultsWhenNoConfigFile(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "documents", config.Database.TextIndex)
	assert.Equal(t, 768, config.Database.VectorDim)
	assert.Equal(t, 10, config.Database.SearchK)
	assert.Equal(t, 100, config.Database.CandidatePool)
	assert.Equal(t, "sentence", config.Chunker.Strategy)
	assert.Equal(t, 50, config.Chunker.MaxWords)
	assert.Empty(t, config.Validate())
}

func TestConfigValidation(t *testing.T) {
	config := Config{
		Server: ServerConfig{Port: -1},
		LLM: LLMConfig{
			BaseURL:     "",
			MaxTokens:   5000, // Invalid
			Temperature: 3.0,  // Invalid
		},
		Database: DatabaseConfig{
			VectorDim:     -1, // Invalid
			SearchK:       10,
			CandidatePool: 5, // Invalid: below search_k
		},
		Chunker: ChunkerConfig{
			Strategy:     "magic", // Invalid
			MaxWords:     50,
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
	}

	errors := config.Validate()
	require.NotEmpty(t, errors)

	fields := map[string]bool{}
	for _, e := range errors {
		fields[e.Field] = true
	}
	assert.True(t, fields["server.port"])
	assert.True(t, fields["llm.base_url"])
	assert.True(t, fields["llm.max_tokens"])
	assert.True(t, fields["llm.temperature"])
	assert.True(t, fields["database.vector_dim"])
	assert.True(t, fields["database.candidate_pool"])
	assert.True(t, fields["chunker.strategy"])
}

func TestEnvironmentOverrides(t *testing.T) {
	os.Setenv("OLLAMA_BASE_URL", "http://env-ollama:11434")
	os.Setenv("DATABASE_URL", "postgres://env-db:5432/docsift")
	defer func() {
		os.Unsetenv("OLLAMA_BASE_URL")
		os.Unsetenv("DATABASE_URL")
	}()

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "http://env-ollama:11434", config.LLM.BaseURL)
	assert.Equal(t, "postgres://env-db:5432/docsift", config.Database.URL)
}
