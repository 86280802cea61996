package repository

import (
	"context"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
)

// CategoryRepository handles category persistence.
type CategoryRepository interface {
	// GetByName looks a category up by name, ignoring case and surrounding
	// whitespace. Returns ErrCategoryNotFound when absent.
	GetByName(ctx context.Context, name string) (*entities.Category, error)

	// GetByID retrieves a category by primary key.
	GetByID(ctx context.Context, id uint) (*entities.Category, error)

	// GetAll returns every category ordered by ID.
	GetAll(ctx context.Context) ([]entities.Category, error)

	// Create inserts a category. Returns ErrDuplicateKey when the name or
	// shortcut is taken.
	Create(ctx context.Context, category *entities.Category) error

	// EnsureExists returns the category with the given name, creating it
	// with shortcut when missing.
	EnsureExists(ctx context.Context, name, shortcut string) (*entities.Category, error)

	// Delete removes a category. Returns ErrCategoryInUse while any item or
	// history record references it.
	Delete(ctx context.Context, id uint) error
}
