// Package store implements the document store on Postgres with the pgvector
// extension. An index is a table; the free-text index carries a vector column
// with an ivfflat cosine index, tabular indices carry the columns their
// inferred schema declares.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"docsift/internal/models"
)

// pgDuplicateTable is the SQLSTATE raised when two concurrent creates race on
// the same table name. Treated as success: the index exists either way.
const pgDuplicateTable = "42P07"

var indexNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

type StoreConfig struct {
	ConnString string
}

// Store is a pgvector-backed document store. It holds one shared connection
// pool, constructed once at process start and injected into the orchestrators.
type Store struct {
	config StoreConfig
	pool   *pgxpool.Pool
}

// NewWithConfig connects to Postgres and makes sure the vector extension is
// available.
func NewWithConfig(config StoreConfig) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := pool.Exec(context.Background(), "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create vector extension: %w", err)
	}

	return &Store{config: config, pool: pool}, nil
}

// IndexExists reports whether the named index is already present.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	if err := validateIndexName(name); err != nil {
		return false, err
	}

	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT to_regclass($1) IS NOT NULL", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check index %s: %w", name, err)
	}
	return exists, nil
}

// CreateIndex creates the named index with the given schema. Creation is
// idempotent: an index that already exists, including one created by a
// concurrent racing upload, is left untouched and reported as success.
func (s *Store) CreateIndex(ctx context.Context, name string, schema models.IndexSchema) error {
	if err := validateIndexName(name); err != nil {
		return err
	}
	if len(schema.Fields) == 0 {
		return fmt.Errorf("index %s: schema has no fields", name)
	}

	ddl, err := buildCreateTable(name, schema)
	if err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, ddl); err != nil && !isDuplicateTable(err) {
		return fmt.Errorf("failed to create index %s: %w", name, err)
	}

	for _, f := range schema.Fields {
		if f.Kind != models.KindVector {
			continue
		}
		createIdx := fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s ON %s
			USING ivfflat (%s vector_cosine_ops)
			WITH (lists = 100)`,
			quoteIdent(name+"_"+f.Name+"_idx"), quoteIdent(name), quoteIdent(f.Name))
		if _, err := s.pool.Exec(ctx, createIdx); err != nil && !isDuplicateTable(err) {
			return fmt.Errorf("failed to create vector index on %s: %w", name, err)
		}
	}

	return nil
}

// BulkWrite inserts records one at a time and reports a per-record outcome.
// A rejected record never aborts the rest of the batch.
func (s *Store) BulkWrite(ctx context.Context, name string, schema models.IndexSchema, records []models.Record) ([]models.WriteOutcome, error) {
	if err := validateIndexName(name); err != nil {
		return nil, err
	}

	stmt, err := buildInsert(name, schema)
	if err != nil {
		return nil, err
	}

	outcomes := make([]models.WriteOutcome, len(records))
	for i, record := range records {
		args := make([]interface{}, len(schema.Fields))
		for j, f := range schema.Fields {
			value, ok := record[f.Name]
			if !ok {
				continue // absent field writes NULL
			}
			if vec, isVec := value.([]float32); isVec && f.Kind == models.KindVector {
				value = pgvector.NewVector(vec)
			}
			args[j] = value
		}

		_, err := s.pool.Exec(ctx, stmt, args...)
		outcomes[i] = models.WriteOutcome{Record: i, Err: err}
	}

	return outcomes, nil
}

// KNNSearch returns the k chunks nearest to vector within the named index,
// restricted to documentID. The filter is mandatory: it is what isolates
// concurrent unrelated documents sharing the index. Results are drawn from an
// oversampled candidate pool and returned in relevance order.
func (s *Store) KNNSearch(ctx context.Context, name string, vector []float32, k, candidates int, documentID string) ([]models.Hit, error) {
	if err := validateIndexName(name); err != nil {
		return nil, err
	}
	if documentID == "" {
		return nil, fmt.Errorf("document identifier is required for k-NN search")
	}
	if k <= 0 {
		k = 10
	}
	if candidates < k {
		candidates = 10 * k
	}

	query := fmt.Sprintf(`
		SELECT %[2]s, %[3]s, %[4]s, %[5]s, distance
		FROM (
			SELECT %[2]s, %[3]s, %[4]s, %[5]s, %[6]s <=> $1 AS distance
			FROM %[1]s
			WHERE %[2]s = $2
			ORDER BY %[6]s <=> $1
			LIMIT $3
		) AS pool
		ORDER BY distance
		LIMIT $4`,
		quoteIdent(name),
		quoteIdent(models.FieldDocumentID),
		quoteIdent(models.FieldFilename),
		quoteIdent(models.FieldContent),
		quoteIdent(models.FieldChunkIndex),
		quoteIdent(models.FieldEmbedding),
	)

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(vector), documentID, candidates, k)
	if err != nil {
		return nil, fmt.Errorf("failed to query index %s: %w", name, err)
	}
	defer rows.Close()

	var hits []models.Hit
	for rows.Next() {
		var hit models.Hit
		if err := rows.Scan(&hit.DocumentID, &hit.Filename, &hit.Text, &hit.ChunkIndex, &hit.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// StructuredQuery forwards a raw query string to the database and returns the
// result unmodified. No validation or planning happens here; the passthrough
// is intentional.
func (s *Store) StructuredQuery(ctx context.Context, query string) (*models.TabularResult, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("structured query failed: %w", err)
	}
	defer rows.Close()

	result := &models.TabularResult{}
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, string(fd.Name))
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func validateIndexName(name string) error {
	if !indexNamePattern.MatchString(name) {
		return fmt.Errorf("invalid index name %q", name)
	}
	return nil
}

func isDuplicateTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgDuplicateTable
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// buildCreateTable renders the DDL for an index schema.
func buildCreateTable(name string, schema models.IndexSchema) (string, error) {
	cols := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		sqlType, err := sqlTypeFor(f)
		if err != nil {
			return "", fmt.Errorf("index %s, field %s: %w", name, f.Name, err)
		}
		cols = append(cols, fmt.Sprintf("%s %s", quoteIdent(f.Name), sqlType))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(name), strings.Join(cols, ", ")), nil
}

// buildInsert renders the parameterized insert statement for an index schema.
func buildInsert(name string, schema models.IndexSchema) (string, error) {
	if len(schema.Fields) == 0 {
		return "", fmt.Errorf("index %s: schema has no fields", name)
	}
	cols := make([]string, 0, len(schema.Fields))
	params := make([]string, 0, len(schema.Fields))
	for i, f := range schema.Fields {
		cols = append(cols, quoteIdent(f.Name))
		params = append(params, fmt.Sprintf("$%d", i+1))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(cols, ", "), strings.Join(params, ", ")), nil
}

func sqlTypeFor(f models.Field) (string, error) {
	switch f.Kind {
	case models.KindInteger:
		return "BIGINT", nil
	case models.KindFloat:
		return "DOUBLE PRECISION", nil
	case models.KindBoolean:
		return "BOOLEAN", nil
	case models.KindTimestamp:
		return "TIMESTAMPTZ", nil
	case models.KindText:
		return "TEXT", nil
	case models.KindVector:
		if f.Dim <= 0 {
			return "", fmt.Errorf("vector field needs a positive dimensionality")
		}
		return fmt.Sprintf("vector(%d)", f.Dim), nil
	default:
		return "", fmt.Errorf("unknown field kind %d", f.Kind)
	}
}
