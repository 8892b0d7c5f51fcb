// Package store provides PostgreSQL persistence for parse runs and
// their extracted fields.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/resume-parser/internal/ingestion"
	"github.com/jonathan/resume-parser/internal/types"
)

// Store wraps a PostgreSQL connection pool
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the runs and results tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS parse_runs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			source TEXT NOT NULL,
			format TEXT NOT NULL DEFAULT '',
			text_chars INTEGER NOT NULL DEFAULT 0,
			text_hash TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'running',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS parse_results (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			run_id UUID NOT NULL REFERENCES parse_runs(id) ON DELETE CASCADE,
			field TEXT NOT NULL,
			value JSONB,
			resolved BOOLEAN NOT NULL DEFAULT FALSE,
			strategy TEXT NOT NULL DEFAULT '',
			attempts JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (run_id, field)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_parse_results_run_id ON parse_results(run_id)`,
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// CreateRun creates a new parse run record and returns its ID
func (s *Store) CreateRun(ctx context.Context, meta *ingestion.Metadata) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`INSERT INTO parse_runs (source, format, text_chars, text_hash, status)
		 VALUES ($1, $2, $3, $4, 'running')
		 RETURNING id`,
		meta.Source, meta.Format, meta.Chars, meta.Hash,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a parse run as completed or failed
func (s *Store) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE parse_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveResults stores every field of a parsed record for a run. Values
// land as JSONB in their plain-mapping form, trails alongside.
func (s *Store) SaveResults(ctx context.Context, runID uuid.UUID, data *types.ResumeData) error {
	for _, field := range data.Fields() {
		value, _ := data.Value(field)
		valueJSON, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value for %s: %w", field, err)
		}

		attemptsJSON, err := json.Marshal(data.Trail(field))
		if err != nil {
			return fmt.Errorf("failed to marshal attempts for %s: %w", field, err)
		}

		strategy := ""
		if winner, ok := data.Winner(field); ok {
			strategy = winner.String()
		}

		_, err = s.pool.Exec(ctx,
			`INSERT INTO parse_results (run_id, field, value, resolved, strategy, attempts)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (run_id, field) DO UPDATE
			 SET value = $3, resolved = $4, strategy = $5, attempts = $6, created_at = NOW()`,
			runID, field.String(), valueJSON, data.Resolved(field), strategy, attemptsJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to save result %s: %w", field, err)
		}
	}
	return nil
}

// GetRun retrieves a parse run by ID
func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := s.pool.QueryRow(ctx,
		`SELECT id, source, format, text_chars, text_hash, status, created_at, completed_at
		 FROM parse_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Source, &run.Format, &run.TextChars, &run.TextHash, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves runs with optional filters
func (s *Store) ListRuns(ctx context.Context, filters RunFilters) ([]Run, error) {
	if filters.Limit == 0 {
		filters.Limit = 50
	}

	query := `SELECT id, source, format, text_chars, text_hash, status, created_at, completed_at
		FROM parse_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Source != "" {
		query += fmt.Sprintf(" AND source ILIKE $%d", argNum)
		args = append(args, "%"+filters.Source+"%")
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filters.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Source, &run.Format, &run.TextChars, &run.TextHash, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// GetResults retrieves every field result for a run, in insertion order
func (s *Store) GetResults(ctx context.Context, runID uuid.UUID) ([]Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, run_id, field, value, resolved, strategy, attempts, created_at
		 FROM parse_results WHERE run_id = $1 ORDER BY created_at ASC, field ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var field string
		var valueJSON, attemptsJSON []byte
		if err := rows.Scan(&r.ID, &r.RunID, &field, &valueJSON, &r.Resolved, &r.Strategy, &attemptsJSON, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Field = types.FieldType(field)
		if len(valueJSON) > 0 {
			if err := json.Unmarshal(valueJSON, &r.Value); err != nil {
				return nil, fmt.Errorf("failed to unmarshal value for %s: %w", field, err)
			}
		}
		if len(attemptsJSON) > 0 {
			if err := json.Unmarshal(attemptsJSON, &r.Attempts); err != nil {
				return nil, fmt.Errorf("failed to unmarshal attempts for %s: %w", field, err)
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// DeleteRun deletes a parse run and its results (via cascade)
func (s *Store) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM parse_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}
