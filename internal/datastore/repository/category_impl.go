package repository

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
	"github.com/denrzv/audio-review-backend/internal/errors"
)

// categoryRepository implements CategoryRepository.
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// GetByName looks a category up through its normalized key.
func (r *categoryRepository) GetByName(ctx context.Context, name string) (*entities.Category, error) {
	key := entities.NormalizeCategoryName(name)
	if key == "" {
		return nil, ErrCategoryNotFound
	}

	var category entities.Category
	err := r.db.WithContext(ctx).Where("name_key = ?", key).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// GetByID retrieves a category by primary key.
func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*entities.Category, error) {
	var category entities.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// GetAll returns every category ordered by ID.
func (r *categoryRepository) GetAll(ctx context.Context) ([]entities.Category, error) {
	var categories []entities.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, translateError(err)
	}
	return categories, nil
}

// Create validates and inserts a category.
func (r *categoryRepository) Create(ctx context.Context, category *entities.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	category.NameKey = entities.NormalizeCategoryName(category.Name)
	if category.NameKey == "" || utf8.RuneCountInString(category.Shortcut) != 1 {
		return ErrInvalidInput
	}
	return translateError(r.db.WithContext(ctx).Create(category).Error)
}

// EnsureExists returns the named category, creating it when missing.
// A concurrent creator winning the race is tolerated.
func (r *categoryRepository) EnsureExists(ctx context.Context, name, shortcut string) (*entities.Category, error) {
	existing, err := r.GetByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrCategoryNotFound) {
		return nil, err
	}

	category := &entities.Category{Name: name, Shortcut: shortcut}
	createErr := r.Create(ctx, category)
	if createErr == nil {
		return category, nil
	}
	if errors.Is(createErr, ErrDuplicateKey) {
		if existing, err := r.GetByName(ctx, name); err == nil {
			return existing, nil
		}
	}
	return nil, createErr
}

// Delete removes a category that nothing references.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category entities.Category
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return translateError(err)
		}

		inUse, err := NewItemRepository(tx).ExistsWithCategory(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return ErrCategoryInUse
		}

		if err := tx.Delete(&category).Error; err != nil {
			err = translateError(err)
			if errors.Is(err, ErrForeignKey) {
				// still referenced by history records
				return errors.Join(ErrCategoryInUse, err)
			}
			return err
		}
		return nil
	})
}
