// Package datastore opens the review database and owns its schema.
package datastore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/denrzv/audio-review-backend/internal/conf"
	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
	"github.com/denrzv/audio-review-backend/internal/datastore/repository"
	"github.com/denrzv/audio-review-backend/internal/errors"
	"github.com/denrzv/audio-review-backend/internal/logger"
	"github.com/denrzv/audio-review-backend/internal/observability/metrics"
)

// UnclassifiedShortcut is the shortcut reserved for the sentinel category.
const UnclassifiedShortcut = "?"

// Manager defines the interface for database lifecycle operations.
type Manager interface {
	// Initialize creates the schema and seeds the category set.
	Initialize(ctx context.Context) error
	// DB returns the underlying GORM database.
	DB() *gorm.DB
	// Path returns the database location (file path for SQLite, host:port/database for MySQL).
	Path() string
	// Close closes the database connection.
	Close() error
}

// Options carries what both backends share.
type Options struct {
	Logger             logger.Logger
	SlowQueryThreshold time.Duration // 0 disables slow query warnings
	Seeds              []conf.CategorySeed
	Unclassified       string // sentinel category name, conf.DefaultUnclassified when empty
}

// Open creates the manager selected by settings.Database.Type.
func Open(settings *conf.Settings, log logger.Logger) (Manager, error) {
	opts := Options{
		Logger:             log,
		SlowQueryThreshold: time.Duration(settings.Database.SlowQueryThresholdMs) * time.Millisecond,
		Seeds:              settings.Categories,
		Unclassified:       settings.Review.Unclassified,
	}

	switch settings.Database.Type {
	case conf.DatabaseMySQL:
		my := settings.Database.MySQL
		return NewMySQLManager(&MySQLConfig{
			Host:            my.Host,
			Port:            my.Port,
			Username:        my.Username,
			Password:        my.Password,
			Database:        my.Database,
			LockWaitSeconds: my.LockWaitSeconds,
			MaxOpenConns:    my.MaxOpenConns,
		}, opts)
	case conf.DatabaseSQLite, "":
		return NewSQLiteManager(&SQLiteConfig{
			Path:          settings.Database.SQLite.Path,
			BusyTimeoutMs: settings.Database.SQLite.BusyTimeoutMs,
		}, opts)
	default:
		return nil, errors.Newf("unsupported database type %q", settings.Database.Type).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Context("operation", "open").
			Build()
	}
}

// gormConfig returns the GORM configuration for opts. Every write the
// review core issues runs in an explicit transaction, so GORM's implicit
// per-statement transaction is skipped.
func (o *Options) gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                 logger.NewGormLoggerAdapter(o.moduleLogger(), o.SlowQueryThreshold),
		SkipDefaultTransaction: true,
	}
}

func (o *Options) moduleLogger() logger.Logger {
	if o.Logger == nil {
		return logger.NewSlogLogger(nil, logger.LogLevelError, time.UTC).Module("datastore")
	}
	return o.Logger.Module("datastore")
}

func (o *Options) base(db *gorm.DB) baseManager {
	return baseManager{
		db:           db,
		log:          o.moduleLogger(),
		seeds:        o.Seeds,
		unclassified: o.Unclassified,
	}
}

// baseManager carries what both backends share: the schema, the seed set
// and the logger.
type baseManager struct {
	db           *gorm.DB
	log          logger.Logger
	seeds        []conf.CategorySeed
	unclassified string
}

// migrate runs auto-migration for every entity and seeds categories.
func (b *baseManager) migrate(ctx context.Context) error {
	start := time.Now()
	err := b.db.WithContext(ctx).AutoMigrate(
		&entities.Category{},
		&entities.Reviewer{},
		&entities.Item{},
		&entities.Classification{},
	)
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migrate").
			Build()
	}

	if err := b.seed(ctx); err != nil {
		return err
	}

	b.log.Info("schema initialized",
		logger.Int("seed_categories", len(b.seeds)),
		logger.Duration("duration", time.Since(start)))
	return nil
}

// seed makes sure the sentinel category and the configured categories exist.
// Existing rows are left alone, so repeated runs are harmless.
func (b *baseManager) seed(ctx context.Context) error {
	categories := repository.NewCategoryRepository(b.db)

	unclassified := b.unclassified
	if unclassified == "" {
		unclassified = conf.DefaultUnclassified
	}
	if _, err := categories.EnsureExists(ctx, unclassified, UnclassifiedShortcut); err != nil {
		return seedError(unclassified, err)
	}

	for _, s := range b.seeds {
		if _, err := categories.EnsureExists(ctx, s.Name, s.Shortcut); err != nil {
			return seedError(s.Name, err)
		}
	}
	return nil
}

func seedError(name string, err error) error {
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", "seed_category").
		Context("category", name).
		Build()
}

// ReportPoolStats copies connection pool statistics into m.
func ReportPoolStats(mgr Manager, m *metrics.DatastoreMetrics) error {
	sqlDB, err := mgr.DB().DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	stats := sqlDB.Stats()
	m.UpdateConnectionMetrics(stats.OpenConnections, stats.InUse, stats.Idle, stats.MaxOpenConnections)
	return nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.Close()
}
