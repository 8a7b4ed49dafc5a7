package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"docsift/pkg/chunker"
	"docsift/pkg/config"
	"docsift/pkg/extract"
	"docsift/pkg/ingest"
	"docsift/pkg/llm"
	"docsift/pkg/retrieve"
	"docsift/pkg/store"
)

type options struct {
	configPath string
	filePath   string
	mode       string
	documentID string
	streaming  bool
}

func main() {
	opts := parseFlags()

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.configPath, "config", "", "Path to config file")
	flag.StringVar(&opts.filePath, "file", "", "Document to ingest before chatting")
	flag.StringVar(&opts.mode, "mode", "text", "Ingestion mode: text or tabular")
	flag.StringVar(&opts.documentID, "document", "", "Chat against an already-ingested document")
	flag.BoolVar(&opts.streaming, "stream", true, "Enable streaming responses")
	flag.Parse()

	return opts
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(opts options) error {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "config: %s: %s\n", e.Field, e.Message)
		}
		return fmt.Errorf("invalid configuration")
	}

	if opts.filePath == "" && opts.documentID == "" {
		return fmt.Errorf("either -file or -document is required")
	}
	if opts.mode != "text" && opts.mode != "tabular" {
		return fmt.Errorf("mode must be \"text\" or \"tabular\"")
	}

	documentStore, err := store.NewWithConfig(store.StoreConfig{
		ConnString: cfg.Database.URL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize document store: %v", err)
	}
	defer documentStore.Close()

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     cfg.LLM.EmbedModel,
		BaseURL:   cfg.LLM.BaseURL,
		VectorDim: cfg.Database.VectorDim,
		RateLimit: cfg.LLM.RateLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %v", err)
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %v", err)
	}

	documentID := opts.documentID

	if opts.filePath != "" {
		ingestor := ingest.NewIngestor(ingest.IngestorConfig{
			TextIndex: cfg.Database.TextIndex,
			VectorDim: cfg.Database.VectorDim,
		}, extract.NewExtractor(), chunker.NewWithConfig(chunker.ChunkerConfig{
			Strategy:     chunker.Strategy(cfg.Chunker.Strategy),
			MaxWords:     cfg.Chunker.MaxWords,
			ChunkSize:    cfg.Chunker.ChunkSize,
			ChunkOverlap: cfg.Chunker.ChunkOverlap,
		}), embedder, documentStore, zap.NewNop())

		documentID, err = ingestFile(ingestor, opts.filePath, opts.mode)
		if err != nil {
			return err
		}
	}

	if opts.mode == "tabular" && opts.filePath != "" {
		color.Cyan("\nIndex %q is ready. Query it over the HTTP API with POST /api/v1/tabular/query.\n", documentID)
		return nil
	}

	retriever := retrieve.NewRetriever(retrieve.RetrieverConfig{
		TextIndex:     cfg.Database.TextIndex,
		K:             cfg.Database.SearchK,
		CandidatePool: cfg.Database.CandidatePool,
	}, embedder, documentStore, chatEngine, zap.NewNop())

	return chatLoop(retriever, documentID, opts.streaming)
}

// ingestFile pushes one local file through the ingestion pipeline and returns
// the identifier the chat loop should scope its queries to.
func ingestFile(ingestor *ingest.Ingestor, path, mode string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %v", path, err)
	}

	color.Blue("\nIngesting %s\n", path)
	spinner := getSpinner("📄 Indexing document...")

	filename := filepath.Base(path)
	var docID string
	switch mode {
	case "text":
		result, err := ingestor.IngestText(context.Background(), content, filename)
		if err != nil {
			spinner.Finish()
			return "", fmt.Errorf("ingestion failed: %v", err)
		}
		docID = result.DocumentID
		spinner.Finish()
		color.Green("\n✓ Indexed %d chunks (document %s)\n", result.Records, result.DocumentID)
		if failed := result.Failed(); len(failed) > 0 {
			color.Yellow("⚠ %d records were rejected\n", len(failed))
		}
	case "tabular":
		result, err := ingestor.IngestTabular(context.Background(), content, filename)
		if err != nil {
			spinner.Finish()
			return "", fmt.Errorf("ingestion failed: %v", err)
		}
		docID = result.IndexName
		spinner.Finish()
		color.Green("\n✓ Indexed %d rows into %q\n", result.Records, result.IndexName)
	}
	return docID, nil
}

// chatLoop reads queries from stdin and answers them against one document
// until the user types "exit".
func chatLoop(retriever *retrieve.Retriever, documentID string, streaming bool) error {
	color.Cyan("\nChat with your document (type 'exit' to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		query := scanner.Text()
		if strings.ToLower(query) == "exit" {
			break
		}

		if streaming {
			stream, err := retriever.AnswerStream(context.Background(), query, documentID)
			if err != nil {
				color.Red("Error: %v\n", err)
				continue
			}

			fmt.Print("\n")
			assistantPrompt("Assistant: ")
			for chunk := range stream {
				fmt.Print(chunk)
			}
			fmt.Print("\n")
		} else {
			spinner := getSpinner("🤖 Generating response...")
			answer, err := retriever.Answer(context.Background(), query, documentID)
			spinner.Finish()
			fmt.Print("\r")

			if err != nil {
				color.Red("Error: %v\n", err)
				continue
			}
			assistantPrompt("Assistant: %s\n", answer)
		}
	}

	return scanner.Err()
}
