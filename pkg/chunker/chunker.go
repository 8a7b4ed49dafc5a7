package chunker

import (
	"strings"
)

// Strategy selects how text is split into chunks.
type Strategy string

const (
	// StrategySentence packs whole sentences into chunks bounded by word count.
	StrategySentence Strategy = "sentence"
	// StrategyWindow produces fixed-size character windows with overlap.
	StrategyWindow Strategy = "window"
)

type ChunkerConfig struct {
	Strategy     Strategy
	MaxWords     int // sentence strategy: word budget per chunk
	ChunkSize    int // window strategy: characters per chunk
	ChunkOverlap int // window strategy: characters shared between neighbours
}

type Chunker struct {
	config ChunkerConfig
}

func NewWithConfig(config ChunkerConfig) Chunker {
	if config.Strategy == "" {
		config.Strategy = StrategySentence
	}
	if config.MaxWords == 0 {
		config.MaxWords = 50
	}
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 200
	}
	if config.ChunkOverlap >= config.ChunkSize {
		config.ChunkOverlap = config.ChunkSize - 1
	}

	return Chunker{config: config}
}

// Chunk splits text according to the configured strategy. The result is
// deterministic for identical input and configuration; empty input yields an
// empty result.
func (c *Chunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	switch c.config.Strategy {
	case StrategyWindow:
		return c.windowChunks(text)
	default:
		return c.sentenceChunks(text)
	}
}

// sentenceChunks greedily packs sentences into a buffer while the word count
// stays within MaxWords, flushing the buffer when the next sentence would
// overflow it. A single sentence longer than MaxWords becomes its own
// oversized chunk; it is never split mid-sentence.
func (c *Chunker) sentenceChunks(text string) []string {
	sentences := splitIntoSentences(text)

	var chunks []string
	current := strings.Builder{}

	for _, sentence := range sentences {
		candidate := sentence
		if current.Len() > 0 {
			candidate = current.String() + " " + sentence
		}
		if len(strings.Fields(candidate)) <= c.config.MaxWords {
			current.Reset()
			current.WriteString(candidate)
			continue
		}
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
		}
		current.Reset()
		current.WriteString(sentence)
	}

	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}

// windowChunks emits successive passages of ChunkSize characters whose starts
// are ChunkSize-ChunkOverlap apart. The final passage may be shorter.
func (c *Chunker) windowChunks(text string) []string {
	runes := []rune(text)
	step := c.config.ChunkSize - c.config.ChunkOverlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.config.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// splitIntoSentences performs basic sentence splitting on terminal
// punctuation. Trailing text without a terminator is kept as a sentence.
func splitIntoSentences(text string) []string {
	sentenceEnders := []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}
	var sentences []string

	current := strings.Builder{}

	for i := 0; i < len(text); i++ {
		current.WriteByte(text[i])

		for _, ender := range sentenceEnders {
			if strings.HasSuffix(current.String(), ender) {
				sentences = append(sentences, strings.TrimSpace(current.String()))
				current.Reset()
				break
			}
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}
