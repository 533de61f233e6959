// Package db provides optional PostgreSQL persistence of classification run
// history. The pipeline works without it; a failed connection downgrades to a
// warning and the run proceeds unjournaled.
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun creates a new classification run record and returns its ID
func (db *DB) CreateRun(ctx context.Context, task, inputPath, outputPath string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO classification_runs (task, input_path, output_path, status)
		 VALUES ($1, $2, $3, 'running')
		 RETURNING id`,
		task, inputPath, outputPath,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// RecordCheckpoint stores a checkpoint row for a run: how many records have
// been processed this run and how many remain pending.
func (db *DB) RecordCheckpoint(ctx context.Context, runID uuid.UUID, processed, pending int) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_checkpoints (run_id, processed, pending)
		 VALUES ($1, $2, $3)`,
		runID, processed, pending,
	)
	if err != nil {
		return fmt.Errorf("failed to record checkpoint: %w", err)
	}
	return nil
}

// CompleteRun marks a classification run as finished with the given status
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE classification_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}
