// Package repository provides database access layer.
//
// Every insert and update is passed through the pre-save normalizer before
// any SQL is issued, so bookkeeping timestamps and credential tokens are
// derived in one place.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dsgallups/rust-atlanta/internal/metrics"
	"github.com/dsgallups/rust-atlanta/internal/presave"
)

// Table names used for metrics labels.
const (
	tableUsers     = "users"
	tableUserAuths = "user_auths"
	tableProjects  = "projects"
	tableEvents    = "events"
	tableNews      = "news"
)

const pgUniqueViolation = "23505"

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides database access methods.
type Repository struct {
	pool       *pgxpool.Pool
	normalizer *presave.Normalizer
	metrics    metrics.Recorder
}

// Option configures a Repository.
type Option func(*Repository)

// WithMetrics sets the recorder for write counters.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(r *Repository) {
		if recorder != nil {
			r.metrics = recorder
		}
	}
}

// New creates a new Repository with a connection pool.
func New(ctx context.Context, databaseURL string, normalizer *presave.Normalizer, opts ...Option) (*Repository, error) {
	if normalizer == nil {
		return nil, errors.New("repository: normalizer is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &Repository{pool: pool, normalizer: normalizer, metrics: metrics.NewNoop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// normalize runs the pre-save hook and counts failures against table.
// Errors are returned unwrapped so callers can match presave.ErrNormalizationFailed.
func (r *Repository) normalize(table string, e presave.Entity, insert bool) error {
	if err := r.normalizer.Normalize(e, insert); err != nil {
		r.metrics.IncNormalizationFailure(table)
		return err
	}
	return nil
}

// recordWrite counts a completed write and its duration.
func (r *Repository) recordWrite(table, op string, start time.Time) {
	r.metrics.IncEntityWrite(table, op)
	r.metrics.ObserveWriteDuration(time.Since(start))
}

// inTx runs fn inside a transaction, committing only when fn succeeds.
func (r *Repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// uniqueViolation returns the violated constraint name when err is a
// PostgreSQL unique_violation.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
