// Package store is the persistence layer: pgvector-backed schema
// management, idempotent project/document upserts, batched chunk
// inserts with retry, and the processing-log queries that drive
// retry eligibility (spec §4.6, §9). Grounded throughout on the
// teacher's repository package
// (TicoDavid-RAGbox.co/backend/internal/repository), generalized from
// a multi-tenant chat-document schema to the pipeline's
// project/document/chunk/log schema.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// overflowMultiplier bounds the connection pool's ceiling relative to
// the worker count (spec §9: "overflow capped at 2x pool_cap").
const overflowMultiplier = 2

// NewPool creates a PostgreSQL connection pool sized for the worker
// count, registering pgvector's wire types the same way the teacher's
// repository.NewPool does.
func NewPool(ctx context.Context, databaseURL string, workerCount, poolCap int) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store.NewPool: parse config: %w", err)
	}

	maxConns := min(workerCount, poolCap)
	if maxConns <= 0 {
		maxConns = poolCap
	}
	if ceiling := poolCap * overflowMultiplier; maxConns > ceiling {
		maxConns = ceiling
	}

	cfg.MaxConns = int32(maxConns)
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.MaxConnLifetime = 1 * time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.AfterConnect = pgxvector.RegisterTypes

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store.NewPool: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store.NewPool: ping: %w", err)
	}

	return pool, nil
}
