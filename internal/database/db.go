package database

import (
	"errors"
	"fmt"
	"log"

	"traveldesk/internal/model"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Project{},
		&model.TravelRequest{},
		&model.Booking{},
		&model.EmployeeDocument{},
		&model.AuditLog{},
	}
}

// NewConnection opens the GORM connection pool. Schema changes are applied
// separately by Migrate.
func NewConnection(dsn string, debug bool) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if !debug {
		cfg.Logger = logger.Default.LogMode(logger.Warn)
	}
	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate brings the schema up to date. With a migrations path the versioned
// SQL files are applied; without one the models are auto-migrated.
func Migrate(db *gorm.DB, dsn, migrationsPath string) error {
	if migrationsPath == "" {
		if err := db.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		log.Println("Schema auto-migrated from models.")
		return nil
	}
	return MigrateUp(migrationsPath, dsn)
}

// MigrateUp applies all pending SQL migrations from migrationsPath, e.g.
// "file://migrations".
func MigrateUp(migrationsPath, dsn string) error {
	m, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("Schema already up to date.")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}
	log.Printf("Applied migrations from %s", migrationsPath)
	return nil
}

// MigrateDown rolls back the given number of migration steps.
func MigrateDown(migrationsPath, dsn string, steps int) error {
	m, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}
