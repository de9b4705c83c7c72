package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/alexivanou/citylist-api/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	var (
		command = flag.String("command", "up", "up, down, steps, force or version")
		steps   = flag.Int("n", 1, "Step count for 'steps' (negative rolls back), version for 'force'")
		dir     = flag.String("dir", "migrations", "Directory holding the postgres and sqlite migration sets")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if cfg.DB.IsMemory() {
		// An in-memory database dies with this process; the app migrates it on startup.
		logger.Info("DB_TYPE is memory, nothing to migrate")
		return
	}

	m, err := migrate.New(cfg.DB.MigrationsSource(*dir), cfg.DB.DSN())
	if err != nil {
		logger.Fatal("Failed to create migration instance", zap.Error(err))
	}
	defer m.Close()

	if err := run(m, *command, *steps, logger); err != nil {
		logger.Fatal("Migration command failed", zap.String("command", *command), zap.Error(err))
	}

	v, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Fatal("Failed to get version", zap.Error(err))
	}
	logger.Info("Migration command completed", zap.Uint("version", v), zap.Bool("dirty", dirty))
}

func run(m *migrate.Migrate, command string, n int, logger *zap.Logger) error {
	var err error
	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		logger.Info("Applying migration steps", zap.Int("n", n))
		err = m.Steps(n)
	case "force":
		// clears the dirty flag after a failed migration was fixed by hand
		err = m.Force(n)
	case "version":
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migrations to apply")
		return nil
	}
	return err
}
