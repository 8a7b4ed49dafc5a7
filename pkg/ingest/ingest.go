// Package ingest turns uploaded documents into indexed records.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docsift/internal/models"
	"docsift/internal/types"
	"docsift/pkg/chunker"
	"docsift/pkg/tabular"
)

type IngestorConfig struct {
	TextIndex string // shared index for free-text uploads
	VectorDim int    // declared dimensionality of the text index
}

// Ingestor composes the extractor, chunker, embedding provider and document
// store to persist one uploaded document. It holds no state across calls;
// all state lives in the store, tagged by document identifier.
type Ingestor struct {
	config    IngestorConfig
	extractor types.Extractor
	chunker   chunker.Chunker
	embedder  types.Embedder
	store     types.DocumentStore
	logger    *zap.Logger
}

// NewIngestor creates an ingestion orchestrator with injected collaborators.
func NewIngestor(config IngestorConfig, extractor types.Extractor, c chunker.Chunker, embedder types.Embedder, store types.DocumentStore, logger *zap.Logger) *Ingestor {
	if config.TextIndex == "" {
		config.TextIndex = "documents"
	}
	if config.VectorDim == 0 {
		config.VectorDim = embedder.Dimensions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		config:    config,
		extractor: extractor,
		chunker:   c,
		embedder:  embedder,
		store:     store,
		logger:    logger,
	}
}

// IngestText persists a free-text upload: extract, chunk, embed in one batch,
// tag every record with a fresh document identifier, and bulk-write into the
// shared text index. The index is created on first use; racing creates are
// idempotent.
func (in *Ingestor) IngestText(ctx context.Context, content []byte, filename string) (*models.IngestResult, error) {
	if len(content) == 0 {
		return nil, types.NewInputError("file", "no file uploaded")
	}

	text, err := in.extractor.Extract(content, strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		in.logger.Error("extraction failed", zap.String("filename", filename), zap.Error(err))
		return nil, types.NewCollaboratorError("extract", err)
	}

	chunks := in.chunker.Chunk(text)
	documentID := uuid.NewString()

	if err := in.ensureTextIndex(ctx); err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		in.logger.Warn("upload produced no chunks", zap.String("filename", filename))
		return &models.IngestResult{DocumentID: documentID, IndexName: in.config.TextIndex}, nil
	}

	vectors, err := in.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		in.logger.Error("embedding failed", zap.String("filename", filename), zap.Error(err))
		return nil, types.NewCollaboratorError("embed", err)
	}

	schema := models.TextIndexSchema(in.config.VectorDim)
	for i, vec := range vectors {
		if len(vec) != in.config.VectorDim {
			return nil, types.NewCollaboratorError("embed", fmt.Errorf(
				"vector dimensionality %d for chunk %d does not match index dimensionality %d",
				len(vec), i, in.config.VectorDim))
		}
	}

	records := make([]models.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = models.Record{
			models.FieldDocumentID: documentID,
			models.FieldFilename:   filename,
			models.FieldChunkIndex: int64(i),
			models.FieldContent:    chunk,
			models.FieldEmbedding:  vectors[i],
		}
	}

	outcomes, err := in.store.BulkWrite(ctx, in.config.TextIndex, schema, records)
	if err != nil {
		in.logger.Error("bulk write failed", zap.String("index", in.config.TextIndex), zap.Error(err))
		return nil, types.NewCollaboratorError("store", err)
	}

	result := &models.IngestResult{
		DocumentID: documentID,
		IndexName:  in.config.TextIndex,
		Records:    len(records),
		Outcomes:   outcomes,
	}
	if failed := result.Failed(); len(failed) > 0 {
		in.logger.Warn("some records were rejected",
			zap.String("document_id", documentID), zap.Int("rejected", len(failed)))
	}
	return result, nil
}

// IngestTabular persists a CSV or XLSX upload into its own index, named after
// the file. Unlike the shared text index, a name collision is a hard
// precondition failure: tabular indices are one per file.
func (in *Ingestor) IngestTabular(ctx context.Context, content []byte, filename string) (*models.IngestResult, error) {
	if len(content) == 0 {
		return nil, types.NewInputError("file", "no file uploaded")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	var normalized *tabular.Normalized
	var err error
	if ext == ".xlsx" {
		normalized, err = tabular.NormalizeXLSX(content)
	} else {
		normalized, err = tabular.NormalizeCSV(content)
	}
	if err != nil {
		return nil, types.NewInputError("file", "could not parse tabular file: %v", err)
	}

	indexName := DeriveIndexName(filename)
	if indexName == "" {
		return nil, types.NewInputError("filename", "cannot derive an index name from %q", filename)
	}

	exists, err := in.store.IndexExists(ctx, indexName)
	if err != nil {
		in.logger.Error("index existence check failed", zap.String("index", indexName), zap.Error(err))
		return nil, types.NewCollaboratorError("store", err)
	}
	if exists {
		return nil, types.NewInputError("filename",
			"an index named %q already exists; upload under a different filename", indexName)
	}

	if err := in.store.CreateIndex(ctx, indexName, normalized.Schema); err != nil {
		in.logger.Error("index creation failed", zap.String("index", indexName), zap.Error(err))
		return nil, types.NewCollaboratorError("store", err)
	}

	outcomes, err := in.store.BulkWrite(ctx, indexName, normalized.Schema, normalized.Rows)
	if err != nil {
		in.logger.Error("bulk write failed", zap.String("index", indexName), zap.Error(err))
		return nil, types.NewCollaboratorError("store", err)
	}

	return &models.IngestResult{
		DocumentID: indexName,
		IndexName:  indexName,
		Records:    len(normalized.Rows),
		Outcomes:   outcomes,
	}, nil
}

// ensureTextIndex creates the shared free-text index when absent. Two
// concurrent first uploads may race here; CreateIndex treats "already exists"
// as success, so the race is benign.
func (in *Ingestor) ensureTextIndex(ctx context.Context) error {
	exists, err := in.store.IndexExists(ctx, in.config.TextIndex)
	if err != nil {
		in.logger.Error("index existence check failed", zap.String("index", in.config.TextIndex), zap.Error(err))
		return types.NewCollaboratorError("store", err)
	}
	if exists {
		return nil
	}
	if err := in.store.CreateIndex(ctx, in.config.TextIndex, models.TextIndexSchema(in.config.VectorDim)); err != nil {
		in.logger.Error("index creation failed", zap.String("index", in.config.TextIndex), zap.Error(err))
		return types.NewCollaboratorError("store", err)
	}
	return nil
}

var nonIdentChars = regexp.MustCompile(`[^a-z0-9]+`)

// DeriveIndexName turns a filename into a store index name: the base name
// without extension, lower-cased, with runs of non-alphanumerics collapsed to
// underscores. Names that would start with a digit get a leading "t_".
func DeriveIndexName(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = nonIdentChars.ReplaceAllString(strings.ToLower(base), "_")
	base = strings.Trim(base, "_")
	if base == "" {
		return ""
	}
	if base[0] >= '0' && base[0] <= '9' {
		base = "t_" + base
	}
	if len(base) > 63 {
		base = base[:63]
	}
	return base
}
