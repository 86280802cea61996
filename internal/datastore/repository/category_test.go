package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
)

func TestCategoryRepository_GetByNameIgnoresCase(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	repo := NewCategoryRepository(f.db)

	for _, name := range []string{"voicemail", "VOICEMAIL", "  Voicemail "} {
		got, err := repo.GetByName(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, f.voicemail.ID, got.ID)
	}

	_, err := repo.GetByName(context.Background(), "music")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	_, err = repo.GetByName(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryRepository_Create(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	repo := NewCategoryRepository(f.db)
	ctx := context.Background()

	tests := []struct {
		name     string
		category entities.Category
		wantErr  error
	}{
		{"new category", entities.Category{Name: "Music", Shortcut: "m"}, nil},
		{"name differs only in case", entities.Category{Name: "speech", Shortcut: "x"}, ErrDuplicateKey},
		{"shortcut taken", entities.Category{Name: "Noise", Shortcut: "v"}, ErrDuplicateKey},
		{"empty name", entities.Category{Name: " ", Shortcut: "e"}, ErrInvalidInput},
		{"long shortcut", entities.Category{Name: "Other", Shortcut: "ot"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		c := tt.category
		err := repo.Create(ctx, &c)
		if tt.wantErr == nil {
			require.NoError(t, err, tt.name)
			assert.NotZero(t, c.ID, tt.name)
			assert.Equal(t, "music", c.NameKey)
			continue
		}
		assert.ErrorIs(t, err, tt.wantErr, tt.name)
	}
}

func TestCategoryRepository_EnsureExistsReturnsExisting(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	repo := NewCategoryRepository(f.db)

	got, err := repo.EnsureExists(context.Background(), "SPEECH", "z")
	require.NoError(t, err)
	assert.Equal(t, f.speech.ID, got.ID)
	assert.Equal(t, "s", got.Shortcut, "existing shortcut is kept")
}

func TestCategoryRepository_GetAllOrdered(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	all, err := NewCategoryRepository(f.db).GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{f.unclassified.ID, f.voicemail.ID, f.speech.ID},
		[]uint{all[0].ID, all[1].ID, all[2].ID})
}

func TestCategoryRepository_Delete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	repo := NewCategoryRepository(f.db)
	ctx := context.Background()

	music := &entities.Category{Name: "Music", Shortcut: "m"}
	require.NoError(t, repo.Create(ctx, music))
	require.NoError(t, repo.Delete(ctx, music.ID))
	_, err := repo.GetByID(ctx, music.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, music.ID), ErrCategoryNotFound)

	f.addItem(t, "a.wav", nil, nil)
	assert.ErrorIs(t, repo.Delete(ctx, f.voicemail.ID), ErrCategoryInUse)
	assert.ErrorIs(t, repo.Delete(ctx, f.unclassified.ID), ErrCategoryInUse)
}

func TestCategoryRepository_DeleteReferencedByHistory(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	repo := NewCategoryRepository(f.db)
	ctx := context.Background()

	music := &entities.Category{Name: "Music", Shortcut: "m"}
	require.NoError(t, repo.Create(ctx, music))

	item := f.addItem(t, "a.wav", nil, nil)
	require.NoError(t, NewClassificationRepository(f.db).Append(ctx, &entities.Classification{
		ReviewerID:         f.reviewer.ID,
		ItemID:             item.ID,
		PreviousCategoryID: f.unclassified.ID,
		NewCategoryID:      music.ID,
		ClassifiedAt:       5,
	}))

	// no item points at Music, but the history record does
	assert.ErrorIs(t, repo.Delete(ctx, music.ID), ErrCategoryInUse)
}
