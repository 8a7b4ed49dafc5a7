package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

// DefaultSystemTemplate frames the assistant's behavior for document-scoped
// answers.
const DefaultSystemTemplate = "You are a helpful assistant with access to excerpts from a single uploaded document. " +
	"Answer questions using only this context."

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	SystemTemplate string
	BaseURL        string // Ollama server URL
}

// ChatEngine is an engine that uses an LLM to generate chat responses.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
}

// NewWithConfig creates a new ChatEngine with the given configuration.
func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	if config.Model == "" {
		config.Model = "mistral"
	}
	if config.Temperature < 0 || config.Temperature > 1 {
		return nil, fmt.Errorf("temperature must be between 0 and 1")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = DefaultSystemTemplate
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}

	llm, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &ChatEngine{
		config: config,
		llm:    llm,
	}, nil
}

// Complete generates an answer from the retrieved passages and the user
// query. Passages are joined into one context block in relevance order.
func (ce *ChatEngine) Complete(ctx context.Context, system string, passages []string, query string) (string, error) {
	if system == "" {
		system = ce.config.SystemTemplate
	}

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, buildContext(passages)),
		llms.TextParts(schema.ChatMessageTypeHuman, query),
	}

	response, err := ce.llm.GenerateContent(ctx, content,
		llms.WithTemperature(ce.config.Temperature),
		llms.WithMaxTokens(ce.config.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return response.Choices[0].Content, nil
}

// CompleteStream generates an answer and delivers it in pieces over the
// returned channel.
func (ce *ChatEngine) CompleteStream(ctx context.Context, system string, passages []string, query string) (<-chan string, error) {
	if system == "" {
		system = ce.config.SystemTemplate
	}

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, buildContext(passages)),
		llms.TextParts(schema.ChatMessageTypeHuman, query),
	}

	resultChan := make(chan string)

	go func() {
		defer close(resultChan)

		response, err := ce.llm.GenerateContent(ctx, content,
			llms.WithTemperature(ce.config.Temperature),
			llms.WithMaxTokens(ce.config.MaxTokens),
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				resultChan <- string(chunk)
				return nil
			}),
		)
		if err != nil {
			resultChan <- fmt.Sprintf("Error: %v", err)
			return
		}
		_ = response
	}()

	return resultChan, nil
}

func buildContext(passages []string) string {
	var contextBuilder strings.Builder
	contextBuilder.WriteString("Relevant excerpts:\n")
	for _, passage := range passages {
		contextBuilder.WriteString(passage)
		contextBuilder.WriteString("\n\n")
	}
	return contextBuilder.String()
}
