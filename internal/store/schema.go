package store

import (
	_ "embed"
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/001_schema.sql
var schemaSQL string

// hnswIndexSQL builds the ANN indexes for cosine similarity over both
// vector columns (document_chunks.embedding and documents.embedding),
// skippable via --skip-hnsw-indexes since it can take a long time on a
// large corpus (spec §6).
const hnswIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding_hnsw
    ON document_chunks USING hnsw (embedding vector_cosine_ops);
CREATE INDEX IF NOT EXISTS idx_documents_embedding_hnsw
    ON documents USING hnsw (embedding vector_cosine_ops);`

// EnsureSchema creates the pgvector extension (if autoCreateExtension
// is set) and the pipeline's tables/indexes, sized for an embedding
// dimension of embeddingDim. It is safe to call on every process
// startup: every statement is idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, embeddingDim int, autoCreateExtension, skipHNSWIndexes bool) error {
	if autoCreateExtension {
		if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
			return fmt.Errorf("store.EnsureSchema: create pgvector extension: %w", err)
		}
	}

	ddl := strings.ReplaceAll(schemaSQL, "vector(%d)", fmt.Sprintf("vector(%d)", embeddingDim))
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("store.EnsureSchema: apply schema: %w", err)
	}

	if !skipHNSWIndexes {
		if _, err := pool.Exec(ctx, hnswIndexSQL); err != nil {
			return fmt.Errorf("store.EnsureSchema: build hnsw index: %w", err)
		}
	}

	return nil
}
