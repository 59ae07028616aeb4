// Command migrate applies or rolls back the database schema.
//
// Usage:
//
//	migrate up
//	migrate down
//	migrate steps N
//	migrate version
//	migrate force VERSION
//	migrate list
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/caarlos0/env/v10"

	"github.com/dsgallups/rust-atlanta/internal/migrate"
	"github.com/dsgallups/rust-atlanta/migrations"
)

type settings struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
}

var errUsage = errors.New("usage: migrate up|down|steps N|version|force VERSION|list")

// runner is the subset of migrate.Runner the commands use.
type runner interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if len(os.Args) > 1 && os.Args[1] == "list" {
		if err := printDescriptors(os.Stdout); err != nil {
			logger.Error("failed to list migrations", "error", err)
			os.Exit(1)
		}
		return
	}

	var s settings
	if err := env.Parse(&s); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	r, err := migrate.Open(s.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to open migrator", "error", err)
		os.Exit(1)
	}
	defer r.Close()

	if err := run(r, os.Args[1:], os.Stdout); err != nil {
		logger.Error("migration failed", "error", err)
		r.Close()
		os.Exit(1)
	}
}

func run(r runner, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	intArg := func() (int, error) {
		if len(args) != 2 {
			return 0, errUsage
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", errUsage, args[1])
		}
		return n, nil
	}

	switch args[0] {
	case "up":
		return r.Up()
	case "down":
		return r.Down()
	case "steps":
		n, err := intArg()
		if err != nil {
			return err
		}
		return r.Steps(n)
	case "force":
		n, err := intArg()
		if err != nil {
			return err
		}
		return r.Force(n)
	case "version":
		v, dirty, err := r.Version()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "version=%d dirty=%t\n", v, dirty)
		return err
	default:
		return errUsage
	}
}

func printDescriptors(out io.Writer) error {
	descriptors, err := migrations.Descriptors()
	if err != nil {
		return err
	}
	for _, d := range descriptors {
		if _, err := fmt.Fprintf(out, "%06d %s\n", d.Version, d.Name); err != nil {
			return err
		}
	}
	return nil
}
