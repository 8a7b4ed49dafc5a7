package chunker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsift/pkg/chunker"
)

func TestSentenceChunksRespectWordBudget(t *testing.T) {
	c := chunker.NewWithConfig(chunker.ChunkerConfig{
		Strategy: chunker.StrategySentence,
		MaxWords: 10,
	})

	text := "The cat sat on the mat. A dog barked loudly outside. Birds flew south for the winter. " +
		"Rain fell all afternoon. The river rose quickly after that."

	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(strings.Fields(chunk)), 10,
			"chunk exceeds word budget: %q", chunk)
	}
}

func TestSentenceChunksKeepOversizedSentenceWhole(t *testing.T) {
	c := chunker.NewWithConfig(chunker.ChunkerConfig{
		Strategy: chunker.StrategySentence,
		MaxWords: 5,
	})

	long := "this single sentence runs well past the five word budget without a break"
	chunks := c.Chunk("Short one. " + long + ". Another short one.")

	require.Len(t, chunks, 3)
	assert.Equal(t, "Short one.", chunks[0])
	assert.Contains(t, chunks[1], "well past the five word budget")
	assert.Equal(t, "Another short one.", chunks[2])
}

func TestSentenceChunksPackMultipleSentences(t *testing.T) {
	c := chunker.NewWithConfig(chunker.ChunkerConfig{
		Strategy: chunker.StrategySentence,
		MaxWords: 50,
	})

	chunks := c.Chunk("First sentence here. Second sentence here. Third sentence here.")

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "First sentence here.")
	assert.Contains(t, chunks[0], "Third sentence here.")
}

func TestWindowChunksOverlapExactly(t *testing.T) {
	c := chunker.NewWithConfig(chunker.ChunkerConfig{
		Strategy:     chunker.StrategyWindow,
		ChunkSize:    20,
		ChunkOverlap: 5,
	})

	text := strings.Repeat("abcdefghij", 10)
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)

	for i := 0; i < len(chunks)-1; i++ {
		head := chunks[i]
		next := chunks[i+1]
		require.Len(t, head, 20)
		tail := head[len(head)-5:]
		assert.Equal(t, tail, next[:5], "chunks %d and %d do not share the overlap", i, i+1)
	}
}

func TestWindowChunksCoverWholeInput(t *testing.T) {
	c := chunker.NewWithConfig(chunker.ChunkerConfig{
		Strategy:     chunker.StrategyWindow,
		ChunkSize:    16,
		ChunkOverlap: 4,
	})

	text := "0123456789abcdefghijklmnopqrstuvwxyz"
	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)

	// Each chunk starts size-overlap characters after the previous one, so
	// stitching the non-overlapping suffixes back together restores the input.
	rebuilt := chunks[0]
	for _, chunk := range chunks[1:] {
		rebuilt += chunk[4:]
	}
	assert.Equal(t, text, rebuilt)

	last := chunks[len(chunks)-1]
	assert.LessOrEqual(t, len(last), 16)
}

func TestChunkingIsDeterministic(t *testing.T) {
	tests := []struct {
		name   string
		config chunker.ChunkerConfig
	}{
		{
			name:   "sentence strategy",
			config: chunker.ChunkerConfig{Strategy: chunker.StrategySentence, MaxWords: 8},
		},
		{
			name:   "window strategy",
			config: chunker.ChunkerConfig{Strategy: chunker.StrategyWindow, ChunkSize: 32, ChunkOverlap: 8},
		},
	}

	text := "Repeatable input text. It has a few sentences. Enough to produce more than one chunk either way. " +
		"And a little extra at the end."

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := chunker.NewWithConfig(tt.config)
			first := c.Chunk(text)
			second := c.Chunk(text)
			assert.Equal(t, first, second)
		})
	}
}

func TestEmptyInputProducesNoChunks(t *testing.T) {
	tests := []struct {
		name     string
		strategy chunker.Strategy
	}{
		{name: "sentence strategy", strategy: chunker.StrategySentence},
		{name: "window strategy", strategy: chunker.StrategyWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := chunker.NewWithConfig(chunker.ChunkerConfig{Strategy: tt.strategy})
			assert.Empty(t, c.Chunk(""))
			assert.Empty(t, c.Chunk("   \n\t "))
		})
	}
}
