package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docsift/pkg/chunker"
	"docsift/pkg/config"
	"docsift/pkg/extract"
	"docsift/pkg/ingest"
	"docsift/pkg/llm"
	"docsift/pkg/retrieve"
	"docsift/pkg/store"
	"docsift/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	var configPath string
	var debug bool
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "config: %s: %s\n", e.Field, e.Message)
		}
		return fmt.Errorf("invalid configuration")
	}

	logger, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

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

	ingestor := ingest.NewIngestor(ingest.IngestorConfig{
		TextIndex: cfg.Database.TextIndex,
		VectorDim: cfg.Database.VectorDim,
	}, extract.NewExtractor(), chunker.NewWithConfig(chunker.ChunkerConfig{
		Strategy:     chunker.Strategy(cfg.Chunker.Strategy),
		MaxWords:     cfg.Chunker.MaxWords,
		ChunkSize:    cfg.Chunker.ChunkSize,
		ChunkOverlap: cfg.Chunker.ChunkOverlap,
	}), embedder, documentStore, logger)

	retriever := retrieve.NewRetriever(retrieve.RetrieverConfig{
		TextIndex:     cfg.Database.TextIndex,
		K:             cfg.Database.SearchK,
		CandidatePool: cfg.Database.CandidatePool,
	}, embedder, documentStore, chatEngine, logger)

	srv := server.NewServer(server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, ingestor, retriever, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
