// Package db owns the PostgreSQL schema and applies it with golang-migrate.
package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/cabpool/cabpool-backend/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations applies every pending migration embedded in the binary to dbURL.
// Already-applied migrations are skipped, so it is safe to call on every startup.
func RunMigrations(dbURL string) error {
	target := logger.MaskConnectionString(dbURL)
	logger.GetLogger().Infow("Running database migrations", "database", target)

	conn, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to open migration connection to %s: %w", target, err)
	}
	defer conn.Close()

	if err := migrateDB(conn); err != nil {
		return fmt.Errorf("migrate %s: %w", target, err)
	}
	return nil
}

// migrator is the part of *migrate.Migrate that applyMigrations drives.
type migrator interface {
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Up() error
}

func migrateDB(conn *sql.DB) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return applyMigrations(m)
}

func applyMigrations(m migrator) error {
	log := logger.GetLogger()

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info("Empty database, applying all migrations")
	case err != nil:
		return fmt.Errorf("failed to read migration version: %w", err)
	case dirty:
		// A previous run failed partway. Every migration is a single transaction,
		// so the previous version is the last clean state.
		clean := cleanVersion(version)
		log.Warnw("Dirty migration state detected, resetting to retry",
			"dirtyVersion", version,
			"resettingTo", clean)
		if err := m.Force(clean); err != nil {
			return fmt.Errorf("failed to reset dirty migration: %w", err)
		}
	default:
		log.Infow("Current migration version", "version", version)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Database is up to date, no migrations to apply")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	if version, _, err := m.Version(); err == nil {
		log.Infow("Migrations applied successfully", "currentVersion", version)
	}
	return nil
}

// cleanVersion is the version to force after version was left dirty.
func cleanVersion(version uint) int {
	clean := int(version) - 1
	if clean < 1 {
		return database.NilVersion
	}
	return clean
}
