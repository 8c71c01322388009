// Package datastore opens and migrates the local review and notification
// database.
package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/osalazarm/alertview/internal/conf"
	"github.com/osalazarm/alertview/internal/datastore/entities"
)

// Manager owns the database handle for the review and notification stores.
type Manager struct {
	db *gorm.DB
}

// Open connects to the configured database and runs migrations.
func Open(settings *conf.DatabaseSettings) (*Manager, error) {
	var dialector gorm.Dialector
	switch settings.Type {
	case conf.DatabaseMySQL:
		dialector = mysql.Open(settings.DSN)
	case conf.DatabaseSQLite:
		dialector = sqlite.Open(settings.Path + "?_foreign_keys=ON")
	default:
		return nil, fmt.Errorf("unsupported database type %q", settings.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &Manager{db: db}, nil
}

// Migrate creates or updates the schema for all entities.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entities.ManagedAlert{},
		&entities.AlertNote{},
		&entities.NotificationConfig{},
		&entities.NotificationEmail{},
		&entities.NotificationHistory{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// DB returns the underlying gorm handle.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close closes the underlying connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
