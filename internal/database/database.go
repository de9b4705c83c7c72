package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexivanou/citylist-api/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver for database/sql
	"github.com/jmoiron/sqlx"
	sqlite "github.com/mattn/go-sqlite3"
)

// SQLiteDriverName is go-sqlite3 with lower_unicode(text) registered on every connection.
// The built-in LOWER only folds ASCII.
const SQLiteDriverName = "sqlite3_citylist"

func init() {
	sql.Register(SQLiteDriverName, &sqlite.SQLiteDriver{
		ConnectHook: func(conn *sqlite.SQLiteConn) error {
			return conn.RegisterFunc("lower_unicode", strings.ToLower, true)
		},
	})
	sqlx.BindDriver(SQLiteDriverName, sqlx.QUESTION)
}

// Connect creates a database connection based on configuration using sqlx
func Connect(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	var driverName string
	var dsn string

	if cfg.IsMemory() {
		driverName = SQLiteDriverName
		dsn = cfg.DSN()
	} else {
		driverName = "pgx"
		dsn = cfg.DSN()
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.IsMemory() {
		// A shared-cache memory database lives as long as one connection is open,
		// and concurrent writers on it fail with table locks instead of waiting.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	return db, nil
}

// Migrate applies all pending migrations found under dir for the configured dialect.
func Migrate(db *sqlx.DB, cfg config.DBConfig, dir string) error {
	var m *migrate.Migrate
	var err error

	sourcePath := cfg.MigrationsSource(dir)

	if cfg.IsMemory() {
		// Use driver instance directly to avoid DSN parsing issues with in-memory SQLite
		driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("could not create sqlite driver: %w", err)
		}
		m, err = migrate.NewWithDatabaseInstance(sourcePath, "sqlite3", driver)
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
	} else {
		m, err = migrate.New(sourcePath, cfg.DSN())
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
		defer m.Close()
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
