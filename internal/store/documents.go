package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/bcgov/epic-search-ingest/internal/model"
)

// DocumentRepo persists document records, their static PDF metadata,
// and the document-level keyword/tag/embedding rollup computed once a
// chunk set has been produced.
type DocumentRepo struct {
	pool *pgxpool.Pool
}

// NewDocumentRepo creates a DocumentRepo.
func NewDocumentRepo(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

// Upsert creates or refreshes d's row, along with rollup's document-
// level keywords/tags/headings/embedding (spec §6). Documents are
// re-upserted on every attempt (unlike projects) because a retry may
// follow a PDF replacement at the same object key; Upsert is called
// once validation captures PDF metadata (with a zero-value rollup) and
// again after chunking/embedding succeed (with the real rollup), so a
// document row exists even when a later stage fails.
func (r *DocumentRepo) Upsert(ctx context.Context, d model.Document, rollup model.DocumentRollup) error {
	metadataJSON, err := json.Marshal(d.Metadata)
	if err != nil {
		return fmt.Errorf("store.DocumentRepo.Upsert: marshal metadata: %w", err)
	}

	var embedding *pgvector.Vector
	if len(rollup.Embedding) > 0 {
		v := pgvector.NewVector(rollup.Embedding)
		embedding = &v
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO documents (id, project_id, name, object_key, producer, creator, page_count, file_size, checksum,
			document_keywords, document_tags, document_headings, document_metadata, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			object_key = EXCLUDED.object_key,
			producer = EXCLUDED.producer,
			creator = EXCLUDED.creator,
			page_count = EXCLUDED.page_count,
			file_size = EXCLUDED.file_size,
			checksum = EXCLUDED.checksum,
			document_keywords = EXCLUDED.document_keywords,
			document_tags = EXCLUDED.document_tags,
			document_headings = EXCLUDED.document_headings,
			document_metadata = EXCLUDED.document_metadata,
			embedding = EXCLUDED.embedding`,
		d.ID, d.ProjectID, d.Name, d.ObjectKey,
		d.Metadata.Producer, d.Metadata.Creator, d.Metadata.PageCount, d.Metadata.FileSize, d.Metadata.Checksum,
		rollup.Keywords, rollup.Tags, rollup.Headings, metadataJSON, embedding,
	)
	if err != nil {
		return fmt.Errorf("store.DocumentRepo.Upsert: %w", err)
	}
	return nil
}
