package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
	"github.com/denrzv/audio-review-backend/internal/errors"
)

// ReviewerRepository handles reviewer persistence.
type ReviewerRepository interface {
	GetByID(ctx context.Context, id uint) (*entities.Reviewer, error)
	GetByUsername(ctx context.Context, username string) (*entities.Reviewer, error)
	// Create inserts a reviewer. Returns ErrDuplicateKey when the username is taken.
	Create(ctx context.Context, reviewer *entities.Reviewer) error
}

type reviewerRepository struct {
	db *gorm.DB
}

// NewReviewerRepository creates a new ReviewerRepository.
func NewReviewerRepository(db *gorm.DB) ReviewerRepository {
	return &reviewerRepository{db: db}
}

func (r *reviewerRepository) GetByID(ctx context.Context, id uint) (*entities.Reviewer, error) {
	var reviewer entities.Reviewer
	err := r.db.WithContext(ctx).First(&reviewer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewerNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &reviewer, nil
}

func (r *reviewerRepository) GetByUsername(ctx context.Context, username string) (*entities.Reviewer, error) {
	var reviewer entities.Reviewer
	err := r.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&reviewer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewerNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &reviewer, nil
}

func (r *reviewerRepository) Create(ctx context.Context, reviewer *entities.Reviewer) error {
	reviewer.Username = strings.TrimSpace(reviewer.Username)
	if reviewer.Username == "" {
		return ErrInvalidInput
	}
	return translateError(r.db.WithContext(ctx).Create(reviewer).Error)
}
