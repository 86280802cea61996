package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
)

// ClassificationRepository is the append-only history ledger.
type ClassificationRepository interface {
	// Append writes a new history record.
	Append(ctx context.Context, record *entities.Classification) error

	// PageByReviewer returns a reviewer's records, newest first, with item
	// and categories preloaded. Records sharing a timestamp are ordered by
	// descending ID so paging is stable.
	PageByReviewer(ctx context.Context, reviewerID uint, offset, limit int) ([]entities.Classification, error)

	// CountByReviewer returns the number of records for a reviewer.
	CountByReviewer(ctx context.Context, reviewerID uint) (int64, error)
}

type classificationRepository struct {
	db *gorm.DB
}

// NewClassificationRepository creates a new ClassificationRepository.
func NewClassificationRepository(db *gorm.DB) ClassificationRepository {
	return &classificationRepository{db: db}
}

func (r *classificationRepository) Append(ctx context.Context, record *entities.Classification) error {
	if record.ID != 0 {
		return ErrInvalidInput
	}
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error)
}

func (r *classificationRepository) PageByReviewer(ctx context.Context, reviewerID uint, offset, limit int) ([]entities.Classification, error) {
	if offset < 0 || limit <= 0 {
		return nil, ErrInvalidInput
	}

	var records []entities.Classification
	err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("PreviousCategory").
		Preload("NewCategory").
		Where("reviewer_id = ?", reviewerID).
		Order("classified_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, translateError(err)
	}
	return records, nil
}

func (r *classificationRepository) CountByReviewer(ctx context.Context, reviewerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Classification{}).
		Where("reviewer_id = ?", reviewerID).
		Count(&count).Error
	if err != nil {
		return 0, translateError(err)
	}
	return count, nil
}
