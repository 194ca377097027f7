// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agencyops/huddle/internal/config"
	"github.com/agencyops/huddle/internal/logging"
	"github.com/agencyops/huddle/internal/metrics"
)

// ErrNotFound reports a single-record lookup that matched nothing. The API
// layer maps it to a 404 response.
var ErrNotFound = errors.New("record not found")

// Store wraps the connection pool and provides data access methods.
type Store struct {
	pool *pgxpool.Pool
}

// New creates the connection pool and verifies connectivity.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info().
		Int32("max_conns", poolConfig.MaxConns).
		Msg("database pool ready")

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping tests the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Query executes a query and scans every row into a map keyed by column
// name. op labels the query in metrics and logs.
func (s *Store) Query(ctx context.Context, op, sql string, args ...any) ([]map[string]any, error) {
	start := time.Now()
	metrics.DBPoolAcquired.Set(float64(s.pool.Stat().AcquiredConns()))
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		metrics.RecordDBQuery(op, time.Since(start), err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	results, err := collectRows(rows)
	metrics.RecordDBQuery(op, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return results, nil
}

// QueryRow executes a query expected to return one row. A query that
// matches nothing returns ErrNotFound.
func (s *Store) QueryRow(ctx context.Context, op, sql string, args ...any) (map[string]any, error) {
	rows, err := s.Query(ctx, op, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return rows[0], nil
}

// Exec executes a statement without returning rows and reports how many
// rows it affected.
func (s *Store) Exec(ctx context.Context, op, sql string, args ...any) (int64, error) {
	start := time.Now()
	tag, err := s.pool.Exec(ctx, sql, args...)
	metrics.RecordDBQuery(op, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}

// ExecTx runs fn inside a transaction, committing on a nil return and
// rolling back otherwise.
func (s *Store) ExecTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	start := time.Now()
	err := pgx.BeginFunc(ctx, s.pool, fn)
	metrics.RecordDBQuery(op, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// collectRows drains a row set into maps keyed by column name.
func collectRows(rows pgx.Rows) ([]map[string]any, error) {
	fieldDescriptions := rows.FieldDescriptions()

	var results []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		row := make(map[string]any, len(fieldDescriptions))
		for i, fd := range fieldDescriptions {
			row[fd.Name] = values[i]
		}
		results = append(results, row)
	}

	return results, rows.Err()
}
