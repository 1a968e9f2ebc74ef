package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcgov/epic-search-ingest/internal/model"
)

// LogRepo is the append-only processing_logs ledger: every document
// attempt writes exactly one row here (spec §4.6), and retry
// eligibility is decided from the most recent row per document.
type LogRepo struct {
	pool *pgxpool.Pool
}

// NewLogRepo creates a LogRepo.
func NewLogRepo(pool *pgxpool.Pool) *LogRepo {
	return &LogRepo{pool: pool}
}

// Append records one processing attempt. Logs are never updated or
// deleted once written. DocumentMetadata is persisted on every row,
// including failure and skip outcomes, since the processor captures
// whatever PDF metadata it obtained before a later stage failed (spec
// §3/§7: "captured document metadata (always present when obtainable,
// even on failure)").
func (r *LogRepo) Append(ctx context.Context, log model.ProcessingLog) error {
	metricsJSON, err := json.Marshal(log.Metrics)
	if err != nil {
		return fmt.Errorf("store.LogRepo.Append: marshal metrics: %w", err)
	}
	documentMetadataJSON, err := json.Marshal(log.DocumentMetadata)
	if err != nil {
		return fmt.Errorf("store.LogRepo.Append: marshal document metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO processing_logs (document_id, project_id, status, validation_reason, metrics, document_metadata)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		log.DocumentID, log.ProjectID, string(log.Status), log.ValidationReason, metricsJSON, documentMetadataJSON,
	)
	if err != nil {
		return fmt.Errorf("store.LogRepo.Append: %w", err)
	}
	return nil
}

// MostRecent returns the most recently written log row for documentID,
// or nil if the document has never been processed.
func (r *LogRepo) MostRecent(ctx context.Context, documentID string) (*model.ProcessingLog, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, document_id, project_id, status, validation_reason, processed_at, metrics, document_metadata
		FROM processing_logs
		WHERE document_id = $1
		ORDER BY processed_at DESC
		LIMIT 1`, documentID)

	log, err := scanLog(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store.LogRepo.MostRecent: %w", err)
	}
	return log, nil
}

// RetryMode selects which previously-processed documents are eligible
// for reprocessing (spec §6 --retry-failed / --retry-skipped).
type RetryMode string

const (
	RetryNone    RetryMode = ""
	RetryFailed  RetryMode = "failed"
	RetrySkipped RetryMode = "skipped"
)

// RetryCandidates returns the document IDs within projectID (or across
// all projects if projectID is empty) whose most recent log matches
// mode. Only RetryFailed and RetrySkipped are supported; RetryNone (or
// any other mode) returns an error.
func (r *LogRepo) RetryCandidates(ctx context.Context, mode RetryMode, projectID string) ([]string, error) {
	var status string
	switch mode {
	case RetryFailed:
		status = string(model.StatusFailure)
	case RetrySkipped:
		status = string(model.StatusSkipped)
	default:
		return nil, fmt.Errorf("store.LogRepo.RetryCandidates: unsupported mode %q", mode)
	}

	query := `
		SELECT document_id, status FROM (
			SELECT DISTINCT ON (document_id) document_id, status
			FROM processing_logs
			WHERE ($1 = '' OR project_id = $1)
			ORDER BY document_id, processed_at DESC
		) latest
		WHERE status = $2`

	rows, err := r.pool.Query(ctx, query, projectID, status)
	if err != nil {
		return nil, fmt.Errorf("store.LogRepo.RetryCandidates: query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var docID, rowStatus string
		if err := rows.Scan(&docID, &rowStatus); err != nil {
			return nil, fmt.Errorf("store.LogRepo.RetryCandidates: scan: %w", err)
		}
		ids = append(ids, docID)
	}

	return ids, nil
}

func scanLog(row pgx.Row) (*model.ProcessingLog, error) {
	var log model.ProcessingLog
	var status string
	var metricsJSON []byte
	var documentMetadataJSON []byte

	err := row.Scan(&log.ID, &log.DocumentID, &log.ProjectID, &status, &log.ValidationReason, &log.ProcessedAt, &metricsJSON, &documentMetadataJSON)
	if err != nil {
		return nil, err
	}
	log.Status = model.Status(status)
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &log.Metrics); err != nil {
			return nil, fmt.Errorf("unmarshal metrics: %w", err)
		}
	}
	if len(documentMetadataJSON) > 0 {
		if err := json.Unmarshal(documentMetadataJSON, &log.DocumentMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal document metadata: %w", err)
		}
	}
	return &log, nil
}
