// Package database opens the PostgreSQL pool and applies the embedded schema
// migrations.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/food-delivery-platform/backend/internal/config"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrations embed.FS

func Connect(cfg config.DatabaseConfig, log logrus.FieldLogger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database open error: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Connection test
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping error: %w", err)
	}

	log.WithField("database", cfg.Name).Info("Database connection established")
	return db, nil
}

// Migrate brings the schema to the latest version, or removes it entirely
// when down is set. An already current schema is not an error.
func Migrate(db *sql.DB, down bool, log logrus.FieldLogger) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration error: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("migration version error: %w", verr)
	}
	log.WithFields(logrus.Fields{"version": version, "dirty": dirty, "down": down}).Info("Schema migrated")
	return nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migration source error: %w", err)
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver error: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migrator init error: %w", err)
	}
	return m, nil
}
