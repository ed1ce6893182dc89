package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/camelrate/internal/config"
	"github.com/JaimeStill/camelrate/pkg/database"
)

//go:embed migrations/*.sql
var migrations embed.FS

type options struct {
	dsn     string
	up      bool
	down    bool
	steps   int
	version bool
	force   int
}

func main() {
	var opts options
	flag.StringVar(&opts.dsn, "dsn", "", "postgres:// URL; defaults to CAMELRATE_DB_* settings")
	flag.BoolVar(&opts.up, "up", false, "apply all pending migrations")
	flag.BoolVar(&opts.down, "down", false, "revert all migrations")
	flag.IntVar(&opts.steps, "steps", 0, "apply N migrations (negative reverts)")
	flag.BoolVar(&opts.version, "version", false, "print the current schema version")
	flag.IntVar(&opts.force, "force", -1, "force the schema version without migrating")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("env file not loaded", "error", err)
	}

	if err := run(opts, logger); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options, logger *slog.Logger) error {
	dsn := opts.dsn
	if dsn == "" {
		var cfg database.Config
		if err := cfg.Finalize(config.DatabaseEnv); err != nil {
			return fmt.Errorf("database config: %w", err)
		}
		dsn = cfg.ConnURL()
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}
	defer m.Close()

	ignoreNoChange := func(err error) error {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema already current")
			return nil
		}
		return err
	}

	switch {
	case opts.version:
		v, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		logger.Info("schema version", "version", v, "dirty", dirty)
	case opts.force >= 0:
		if err := m.Force(opts.force); err != nil {
			return fmt.Errorf("force: %w", err)
		}
		logger.Info("version forced", "version", opts.force)
	case opts.up:
		if err := ignoreNoChange(m.Up()); err != nil {
			return fmt.Errorf("up: %w", err)
		}
		logger.Info("migrations applied")
	case opts.down:
		if err := ignoreNoChange(m.Down()); err != nil {
			return fmt.Errorf("down: %w", err)
		}
		logger.Info("migrations reverted")
	case opts.steps != 0:
		if err := ignoreNoChange(m.Steps(opts.steps)); err != nil {
			return fmt.Errorf("steps: %w", err)
		}
		logger.Info("migration steps applied", "steps", opts.steps)
	default:
		flag.Usage()
	}
	return nil
}
