package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/bcgov/epic-search-ingest/internal/model"
)

// maxInsertAttempts bounds the exponential-backoff retry loop for a
// chunk batch insert (spec §9: "max 5 attempts").
const maxInsertAttempts = 5

// ChunkRepo persists chunk rows with their embedding vectors, grounded
// on the teacher's pgx-batch ChunkRepo.BulkInsert
// (TicoDavid-RAGbox.co/backend/internal/repository/chunk.go), widened
// into per-group transactions with retry since this pipeline writes
// chunks in bulk rather than one document's handful at a time.
type ChunkRepo struct {
	pool      *pgxpool.Pool
	locks     *DocumentLocks
	batchSize int
}

// NewChunkRepo creates a ChunkRepo. batchSize is the number of chunk
// rows committed per transaction (spec §6 CHUNK_INSERT_BATCH_SIZE).
func NewChunkRepo(pool *pgxpool.Pool, locks *DocumentLocks, batchSize int) *ChunkRepo {
	if batchSize <= 0 {
		batchSize = 25
	}
	return &ChunkRepo{pool: pool, locks: locks, batchSize: batchSize}
}

// InsertAll writes chunks for one document in batches of batchSize,
// each batch its own transaction. A document's writes are serialized
// against other attempts at the same document via the sharded lock
// (spec §9). If every retry for a batch is exhausted, InsertAll deletes
// every chunk row stored for documentID (including the batches this
// call already committed) and returns the last error, leaving nothing
// partially written.
func (r *ChunkRepo) InsertAll(ctx context.Context, documentID string, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	r.locks.Lock(documentID)
	defer r.locks.Unlock(documentID)

	for start := 0; start < len(chunks); start += r.batchSize {
		end := start + r.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		if err := r.insertBatchWithRetry(ctx, batch); err != nil {
			r.deleteByDocumentID(ctx, documentID)
			return fmt.Errorf("store.ChunkRepo.InsertAll: batch %d-%d: %w", start, end, err)
		}
	}

	return nil
}

func (r *ChunkRepo) insertBatchWithRetry(ctx context.Context, batch []model.Chunk) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0.2

	return backoff.Retry(func() error {
		return r.insertBatch(ctx, batch)
	}, backoff.WithContext(backoff.WithMaxRetries(b, maxInsertAttempts-1), ctx))
}

func (r *ChunkRepo) insertBatch(ctx context.Context, batch []model.Chunk) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	pgxBatch := &pgx.Batch{}
	for _, c := range batch {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		embedding := pgvector.NewVector(c.Embedding)
		metadataJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for chunk %s: %w", id, err)
		}
		pgxBatch.Queue(`
			INSERT INTO document_chunks (id, document_id, project_id, page_number, content, embedding, metadata)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, c.DocumentID, c.ProjectID, c.PageNumber, c.Content, embedding,
			metadataJSON,
		)
	}

	br := tx.SendBatch(ctx, pgxBatch)
	for range batch {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("exec: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *ChunkRepo) deleteByDocumentID(ctx context.Context, documentID string) {
	r.pool.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
}

// CountByDocumentID returns the number of chunks persisted for a
// document.
func (r *ChunkRepo) CountByDocumentID(ctx context.Context, documentID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM document_chunks WHERE document_id = $1`, documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("store.ChunkRepo.CountByDocumentID: %w", err)
	}
	return count, nil
}
