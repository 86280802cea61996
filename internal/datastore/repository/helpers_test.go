package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
)

// fixture is a migrated database with the sentinel category, two regular
// categories and one reviewer.
type fixture struct {
	db           *gorm.DB
	unclassified entities.Category
	voicemail    entities.Category
	speech       entities.Category
	reviewer     entities.Reviewer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=2000&_foreign_keys=ON&_txlock=immediate",
		filepath.Join(t.TempDir(), "repo.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gorm_logger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, db.AutoMigrate(
		&entities.Category{},
		&entities.Reviewer{},
		&entities.Item{},
		&entities.Classification{},
	))

	f := &fixture{db: db}
	categories := NewCategoryRepository(db)
	ctx := context.Background()
	f.unclassified = *mustEnsure(t, categories, "Unclassified", "?")
	f.voicemail = *mustEnsure(t, categories, "Voicemail", "v")
	f.speech = *mustEnsure(t, categories, "Speech", "s")

	f.reviewer = entities.Reviewer{Username: "alice"}
	require.NoError(t, NewReviewerRepository(db).Create(ctx, &f.reviewer))
	return f
}

func mustEnsure(t *testing.T, repo CategoryRepository, name, shortcut string) *entities.Category {
	t.Helper()
	c, err := repo.EnsureExists(context.Background(), name, shortcut)
	require.NoError(t, err)
	return c
}

// addItem inserts an unclassified item with the given lease stamp.
func (f *fixture) addItem(t *testing.T, name string, holder *uint, leasedAt *int64) *entities.Item {
	t.Helper()
	item := &entities.Item{
		Filename:          name,
		ContentRef:        name,
		InitialCategoryID: f.voicemail.ID,
		CurrentCategoryID: f.unclassified.ID,
		UploadedByID:      f.reviewer.ID,
		UploadedAt:        1,
		LeaseHolderID:     holder,
		LeasedAt:          leasedAt,
	}
	require.NoError(t, NewItemRepository(f.db).Create(context.Background(), item))
	return item
}

func (f *fixture) addReviewer(t *testing.T, username string) *entities.Reviewer {
	t.Helper()
	r := &entities.Reviewer{Username: username}
	require.NoError(t, NewReviewerRepository(f.db).Create(context.Background(), r))
	return r
}

func ptr[T any](v T) *T { return &v }
