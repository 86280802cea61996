package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/denrzv/audio-review-backend/internal/logger"
)

// defaultBusyTimeoutMs applies when no busy timeout is configured.
const defaultBusyTimeoutMs = 5000

// SQLiteConfig holds SQLite-specific configuration.
type SQLiteConfig struct {
	Path          string
	BusyTimeoutMs int
}

// SQLiteManager handles the review database on SQLite.
//
// SQLite has no row locks, so transactions are opened with BEGIN IMMEDIATE:
// the first statement of every transaction takes the database write lock
// and concurrent writers wait up to the busy timeout.
type SQLiteManager struct {
	baseManager
	dbPath string
}

// NewSQLiteManager opens (creating if needed) the SQLite database at cfg.Path.
func NewSQLiteManager(cfg *SQLiteConfig, opts Options) (*SQLiteManager, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	busy := cfg.BusyTimeoutMs
	if busy <= 0 {
		busy = defaultBusyTimeoutMs
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=ON&_txlock=immediate", cfg.Path, busy)

	db, err := gorm.Open(sqlite.Open(dsn), opts.gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	m := &SQLiteManager{baseManager: opts.base(db), dbPath: cfg.Path}
	m.log.Debug("sqlite database opened",
		logger.String("path", cfg.Path),
		logger.Int("busy_timeout_ms", busy))
	return m, nil
}

// Initialize creates the schema and seeds initial data.
func (m *SQLiteManager) Initialize(ctx context.Context) error {
	return m.migrate(ctx)
}

// DB returns the underlying GORM database.
func (m *SQLiteManager) DB() *gorm.DB {
	return m.db
}

// Path returns the database file path.
func (m *SQLiteManager) Path() string {
	return m.dbPath
}

// Close closes the database connection.
func (m *SQLiteManager) Close() error {
	return closeDB(m.db)
}
