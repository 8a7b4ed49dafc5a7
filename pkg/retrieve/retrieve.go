// Package retrieve answers natural-language queries scoped to one document.
package retrieve

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"docsift/internal/models"
	"docsift/internal/types"
)

type RetrieverConfig struct {
	TextIndex     string // shared free-text index to search
	K             int    // results forwarded to the completion step
	CandidatePool int    // oversampled pool the k results are drawn from
	System        string // system instruction framing the assistant
}

// Retriever composes the embedding provider, document store and completion
// collaborator into the answer path. Stateless across calls.
type Retriever struct {
	config    RetrieverConfig
	embedder  types.Embedder
	store     types.DocumentStore
	completer types.Completer
	logger    *zap.Logger
}

// streamCompleter is implemented by completers that can deliver an answer in
// pieces.
type streamCompleter interface {
	CompleteStream(ctx context.Context, system string, passages []string, query string) (<-chan string, error)
}

// NewRetriever creates a retrieval orchestrator with injected collaborators.
func NewRetriever(config RetrieverConfig, embedder types.Embedder, store types.DocumentStore, completer types.Completer, logger *zap.Logger) *Retriever {
	if config.TextIndex == "" {
		config.TextIndex = "documents"
	}
	if config.K == 0 {
		config.K = 10
	}
	if config.CandidatePool == 0 {
		config.CandidatePool = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		config:    config,
		embedder:  embedder,
		store:     store,
		completer: completer,
		logger:    logger,
	}
}

// Answer embeds the query, retrieves the document's nearest chunks and
// conditions a completion on them. The document-ID filter is mandatory: it is
// what keeps concurrent unrelated documents isolated inside the shared index.
func (r *Retriever) Answer(ctx context.Context, query, documentID string) (string, error) {
	passages, err := r.retrieve(ctx, query, documentID)
	if err != nil {
		return "", err
	}

	answer, err := r.completer.Complete(ctx, r.config.System, passages, query)
	if err != nil {
		r.logger.Error("completion failed", zap.String("document_id", documentID), zap.Error(err))
		return "", types.NewCollaboratorError("complete", err)
	}
	return answer, nil
}

// AnswerStream behaves like Answer but delivers the completion in pieces when
// the completer supports streaming; otherwise the full answer arrives as a
// single piece.
func (r *Retriever) AnswerStream(ctx context.Context, query, documentID string) (<-chan string, error) {
	passages, err := r.retrieve(ctx, query, documentID)
	if err != nil {
		return nil, err
	}

	if sc, ok := r.completer.(streamCompleter); ok {
		stream, err := sc.CompleteStream(ctx, r.config.System, passages, query)
		if err != nil {
			r.logger.Error("completion failed", zap.String("document_id", documentID), zap.Error(err))
			return nil, types.NewCollaboratorError("complete", err)
		}
		return stream, nil
	}

	answer, err := r.completer.Complete(ctx, r.config.System, passages, query)
	if err != nil {
		r.logger.Error("completion failed", zap.String("document_id", documentID), zap.Error(err))
		return nil, types.NewCollaboratorError("complete", err)
	}
	out := make(chan string, 1)
	out <- answer
	close(out)
	return out, nil
}

// RunStructuredQuery forwards a raw structured query to the store and returns
// its result unmodified. Presence of the query and a document identifier are
// the only preconditions checked.
func (r *Retriever) RunStructuredQuery(ctx context.Context, query, documentID string) (*models.TabularResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.NewInputError("query", "query must not be empty")
	}
	if strings.TrimSpace(documentID) == "" {
		return nil, types.NewInputError("document_id", "document identifier is required")
	}

	result, err := r.store.StructuredQuery(ctx, query)
	if err != nil {
		r.logger.Error("structured query failed", zap.String("document_id", documentID), zap.Error(err))
		return nil, types.NewCollaboratorError("store", err)
	}
	return result, nil
}

// retrieve validates the request, embeds the query and collects the matched
// chunks' text in the store's relevance order. An empty query is rejected
// before any embedding call is attempted.
func (r *Retriever) retrieve(ctx context.Context, query, documentID string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.NewInputError("query", "query must not be empty")
	}
	if strings.TrimSpace(documentID) == "" {
		return nil, types.NewInputError("document_id", "document identifier is required")
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Error("query embedding failed", zap.Error(err))
		return nil, types.NewCollaboratorError("embed", err)
	}

	hits, err := r.store.KNNSearch(ctx, r.config.TextIndex, vector, r.config.K, r.config.CandidatePool, documentID)
	if err != nil {
		r.logger.Error("k-NN search failed", zap.String("document_id", documentID), zap.Error(err))
		return nil, types.NewCollaboratorError("store", err)
	}

	passages := make([]string, len(hits))
	for i, hit := range hits {
		passages[i] = hit.Text
	}
	return passages, nil
}
