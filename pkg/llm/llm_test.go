package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsift/pkg/llm"
)

func TestNewWithConfig(t *testing.T) {
	config := llm.ChatConfig{
		Model:          "testmodel",
		Temperature:    0.5,
		MaxTokens:      1000,
		SystemTemplate: "Test system template",
		BaseURL:        "http://localhost:1234",
	}
	engine, err := llm.NewWithConfig(config)
	assert.NoError(t, err)
	assert.NotNil(t, engine)
}

func TestNewWithConfigRejectsBadTemperature(t *testing.T) {
	_, err := llm.NewWithConfig(llm.ChatConfig{Temperature: 3.0})
	assert.Error(t, err)
}

func TestNewEmbedderWithConfig(t *testing.T) {
	emb, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     "nomic-embed-text:latest",
		BaseURL:   "http://localhost:11434",
		VectorDim: 768,
	})
	require.NoError(t, err)
	assert.Equal(t, 768, emb.Dimensions())
}

func TestMockEmbedderIsDeterministic(t *testing.T) {
	emb := llm.NewMockEmbedder(64)
	ctx := context.Background()

	first, err := emb.Embed(ctx, "the same text")
	require.NoError(t, err)
	second, err := emb.Embed(ctx, "the same text")
	require.NoError(t, err)
	other, err := emb.Embed(ctx, "different text")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64)
}

func TestMockEmbedderBatchMatchesSingle(t *testing.T) {
	emb := llm.NewMockEmbedder(32)
	ctx := context.Background()

	texts := []string{"alpha", "beta", "gamma"}
	batch, err := emb.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, len(texts))

	for i, text := range texts {
		single, err := emb.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}
