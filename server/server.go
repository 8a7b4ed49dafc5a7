// Package server provides the HTTP API over the ingestion and retrieval
// orchestrators.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"docsift/internal/types"
)

type Config struct {
	Host string
	Port int
}

// Server is the HTTP server for the docsift API. It owns no document state;
// everything is delegated to the injected orchestrators.
type Server struct {
	config   Config
	ingestor types.Ingestor
	answerer types.Answerer
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(config Config, ingestor types.Ingestor, answerer types.Answerer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		config:   config,
		ingestor: ingestor,
		answerer: answerer,
		logger:   logger,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Post("/api/v1/documents", s.handleUpload)
	r.Post("/api/v1/query", s.handleQuery)
	r.Post("/api/v1/tabular/query", s.handleStructuredQuery)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
