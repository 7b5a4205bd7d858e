package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/termfx/hlebhint/models"
)

// Connect opens a sqlite file or a libsql URL and runs migrations. The auth
// token is only used for URLs.
func Connect(dsn string, debug bool, authToken string) (*gorm.DB, error) {
	// Ensure directory exists for file-based SQLite
	if !isURL(dsn) && dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if isURL(dsn) {
		var (
			connector driver.Connector
			err       error
		)
		if authToken != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(authToken))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create libsql connector: %w", err)
		}

		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{
			DriverName: "libsql",
			Conn:       conn,
			DSN:        dsn,
		})
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := Open(dialector, debug)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, err
	}
	return db, nil
}

// Open connects through an arbitrary dialector, enables foreign keys and
// migrates the schema.
func Open(dialector gorm.Dialector, debug bool) (*gorm.DB, error) {
	config := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

// isURL checks if the DSN is a URL (for Turso) or file path
func isURL(dsn string) bool {
	return strings.HasPrefix(dsn, "http://") ||
		strings.HasPrefix(dsn, "https://") ||
		strings.HasPrefix(dsn, "libsql://")
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Session{},
		&models.ScanRun{},
		&models.Hint{},
	)
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
