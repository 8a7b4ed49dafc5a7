package types

import (
	"context"

	"docsift/internal/models"
)

// Core interfaces

// Extractor turns an uploaded payload into plain text. ext is the lower-case
// file extension including the leading dot.
type Extractor interface {
	Extract(content []byte, ext string) (string, error)
}

// Embedder maps text to fixed-dimensionality vectors. Dimensions is known at
// construction time and must match the target index schema.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Completer generates a natural-language answer from a system instruction and
// ordered context passages plus the user query.
type Completer interface {
	Complete(ctx context.Context, system string, passages []string, query string) (string, error)
}

// DocumentStore is a schema-defined, bulk-writable, k-NN-searchable index.
type DocumentStore interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	// CreateIndex creates the named index. Creating an index that already
	// exists is not an error; the existing index is left untouched.
	CreateIndex(ctx context.Context, name string, schema models.IndexSchema) error
	// BulkWrite inserts records best-effort and reports one outcome per
	// record. The returned error is reserved for failures that prevent the
	// batch from being attempted at all.
	BulkWrite(ctx context.Context, name string, schema models.IndexSchema, records []models.Record) ([]models.WriteOutcome, error)
	// KNNSearch returns the k nearest chunks to vector within the named
	// index, restricted to documentID, in relevance order. candidates is the
	// oversampled pool the k results are drawn from.
	KNNSearch(ctx context.Context, name string, vector []float32, k, candidates int, documentID string) ([]models.Hit, error)
	// StructuredQuery forwards a raw query string to the store's query
	// language and returns the result unmodified.
	StructuredQuery(ctx context.Context, query string) (*models.TabularResult, error)
}

// Ingestor persists one uploaded document.
type Ingestor interface {
	IngestText(ctx context.Context, content []byte, filename string) (*models.IngestResult, error)
	IngestTabular(ctx context.Context, content []byte, filename string) (*models.IngestResult, error)
}

// Answerer answers a natural-language query scoped to one document.
type Answerer interface {
	Answer(ctx context.Context, query, documentID string) (string, error)
	RunStructuredQuery(ctx context.Context, query, documentID string) (*models.TabularResult, error)
}
