// Package migrate applies the embedded schema to PostgreSQL.
package migrate

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dsgallups/rust-atlanta/migrations"
)

// Runner drives schema migrations over a single database connection.
type Runner struct {
	m      *migrate.Migrate
	logger *slog.Logger
}

// Open connects to databaseURL with the pgx stdlib driver and prepares a Runner.
func Open(databaseURL string, logger *slog.Logger) (*Runner, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	r, err := New(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// New prepares a Runner over an existing connection. Close releases db.
func New(db *sql.DB, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}

	return &Runner{m: m, logger: logger}, nil
}

// Up applies every pending migration. Already-applied migrations are skipped.
func (r *Runner) Up() error {
	if err := r.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			r.logger.Info("schema up to date")
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}
	r.logVersion("migrations applied")
	return nil
}

// Down rolls back every applied migration.
func (r *Runner) Down() error {
	if err := r.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("roll back migrations: %w", err)
	}
	r.logger.Info("migrations rolled back")
	return nil
}

// Steps applies n migrations forward, or |n| backward when n is negative.
func (r *Runner) Steps(n int) error {
	if n == 0 {
		return nil
	}
	if err := r.m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("step migrations by %d: %w", n, err)
	}
	r.logVersion("migration steps applied")
	return nil
}

// Version reports the current schema version. A fresh database reports 0.
func (r *Runner) Version() (uint, bool, error) {
	version, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force marks the schema as being at version without running anything.
func (r *Runner) Force(version int) error {
	if err := r.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Close releases the migrator and its database connection.
func (r *Runner) Close() error {
	srcErr, dbErr := r.m.Close()
	if srcErr != nil {
		return fmt.Errorf("close migration source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration driver: %w", dbErr)
	}
	return nil
}

func (r *Runner) logVersion(msg string) {
	version, dirty, err := r.Version()
	if err != nil {
		r.logger.Warn(msg, "error", err)
		return
	}
	r.logger.Info(msg, "version", version, "dirty", dirty)
}
