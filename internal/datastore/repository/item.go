package repository

import (
	"context"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
)

// EligibilityQuery describes which items a reviewer may lease right now:
// items still in the unclassified category that are unleased, leased to the
// reviewer, or carry a lease stamped before the cutoff.
type EligibilityQuery struct {
	ReviewerID     uint
	UnclassifiedID uint
	CutoffMs       int64 // leases stamped strictly before this instant are expired
}

// ItemRepository handles item persistence and lease bookkeeping.
type ItemRepository interface {
	// Create inserts a new item. Returns ErrDuplicateKey when the content
	// reference is already registered.
	Create(ctx context.Context, item *entities.Item) error

	// GetByID retrieves an item with its categories preloaded.
	GetByID(ctx context.Context, id uint) (*entities.Item, error)

	// GetByIDForUpdate re-reads an item under an exclusive row lock.
	// Only meaningful inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uint) (*entities.Item, error)

	// FindLeasedTo returns an unclassified item whose lease stamp belongs to
	// the reviewer, expired or not. Returns ErrItemNotFound when none exists.
	FindLeasedTo(ctx context.Context, reviewerID, unclassifiedID uint) (*entities.Item, error)

	// RandomEligibleIDs returns up to limit eligible item IDs in random order.
	RandomEligibleIDs(ctx context.Context, q EligibilityQuery, limit int) ([]uint, error)

	// StampLease sets the lease holder and timestamp if the row still has
	// the given version. Returns false when the version no longer matches.
	StampLease(ctx context.Context, id, version, reviewerID uint, leasedAtMs int64) (bool, error)

	// ApplyClassification moves the item to categoryID and clears the lease
	// if the row still has the given version.
	ApplyClassification(ctx context.Context, id, version, categoryID uint) (bool, error)

	// ExistsWithCategory reports whether any item references the category
	// as its initial or current category.
	ExistsWithCategory(ctx context.Context, categoryID uint) (bool, error)
}
