package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcgov/epic-search-ingest/internal/model"
)

// ProjectRepo persists the project grouping discovered from the
// metadata API.
type ProjectRepo struct {
	pool *pgxpool.Pool
}

// NewProjectRepo creates a ProjectRepo.
func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

// Upsert creates p if it doesn't already exist, leaving an existing row
// untouched (spec §4.1: "created lazily on first sighting and never
// mutated by the pipeline afterward").
func (r *ProjectRepo) Upsert(ctx context.Context, p model.Project) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO projects (id, name, metadata)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		p.ID, p.Name, p.Metadata,
	)
	if err != nil {
		return fmt.Errorf("store.ProjectRepo.Upsert: %w", err)
	}
	return nil
}
