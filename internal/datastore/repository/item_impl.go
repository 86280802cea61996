package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
	"github.com/denrzv/audio-review-backend/internal/errors"
)

// itemRepository implements ItemRepository.
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

// Create inserts a new item.
func (r *itemRepository) Create(ctx context.Context, item *entities.Item) error {
	if item.Filename == "" || item.ContentRef == "" {
		return ErrInvalidInput
	}
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error)
}

// GetByID retrieves an item with its categories preloaded.
func (r *itemRepository) GetByID(ctx context.Context, id uint) (*entities.Item, error) {
	var item entities.Item
	err := r.db.WithContext(ctx).
		Preload("InitialCategory").
		Preload("CurrentCategory").
		First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

// GetByIDForUpdate re-reads an item with SELECT ... FOR UPDATE.
// SQLite has no row locks; there the transaction itself is the lock.
func (r *itemRepository) GetByIDForUpdate(ctx context.Context, id uint) (*entities.Item, error) {
	var item entities.Item
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

// FindLeasedTo returns the reviewer's oldest outstanding unclassified lease.
func (r *itemRepository) FindLeasedTo(ctx context.Context, reviewerID, unclassifiedID uint) (*entities.Item, error) {
	var item entities.Item
	err := r.db.WithContext(ctx).
		Where("current_category_id = ? AND lease_holder_id = ?", unclassifiedID, reviewerID).
		Order("leased_at ASC, id ASC").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &item, nil
}

// RandomEligibleIDs returns eligible item IDs in random order.
func (r *itemRepository) RandomEligibleIDs(ctx context.Context, q EligibilityQuery, limit int) ([]uint, error) {
	if limit <= 0 {
		return nil, ErrInvalidInput
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.Item{}).
		Where("current_category_id = ?", q.UnclassifiedID).
		Where("(lease_holder_id IS NULL OR lease_holder_id = ? OR leased_at < ?)", q.ReviewerID, q.CutoffMs).
		Order(randomOrder(r.db)).
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, translateError(err)
	}
	return ids, nil
}

// StampLease writes the lease fields guarded by the version column.
func (r *itemRepository) StampLease(ctx context.Context, id, version, reviewerID uint, leasedAtMs int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.Item{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"lease_holder_id": reviewerID,
			"leased_at":       leasedAtMs,
			"version":         gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ApplyClassification sets the current category and clears the lease,
// guarded by the version column.
func (r *itemRepository) ApplyClassification(ctx context.Context, id, version, categoryID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.Item{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"current_category_id": categoryID,
			"lease_holder_id":     gorm.Expr("NULL"),
			"leased_at":           gorm.Expr("NULL"),
			"version":             gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ExistsWithCategory reports whether any item references the category.
func (r *itemRepository) ExistsWithCategory(ctx context.Context, categoryID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Item{}).
		Where("(initial_category_id = ? OR current_category_id = ?)", categoryID, categoryID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// randomOrder returns the dialect's random ordering expression.
func randomOrder(db *gorm.DB) string {
	if db.Dialector != nil && db.Dialector.Name() == "mysql" {
		return "RAND()"
	}
	return "RANDOM()"
}
