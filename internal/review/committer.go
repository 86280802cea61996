package review

import (
	"context"
	"time"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
	"github.com/denrzv/audio-review-backend/internal/datastore/repository"
	"github.com/denrzv/audio-review-backend/internal/errors"
	"github.com/denrzv/audio-review-backend/internal/logger"
	"github.com/denrzv/audio-review-backend/internal/observability/metrics"
)

// CommitOption adjusts a single Commit call.
type CommitOption func(*commitOptions)

type commitOptions struct {
	expectedVersion *uint
}

// WithExpectedVersion makes Commit fail with ErrConcurrentModification
// unless the item still has version v, typically the Version returned by
// Acquire.
func WithExpectedVersion(v uint) CommitOption {
	return func(o *commitOptions) { o.expectedVersion = &v }
}

// Commit classifies an item as categoryName on behalf of reviewerID.
//
// In one transaction the item is locked, a history record is appended with
// the item's current category as the previous category, the item moves to
// the new category and its lease is cleared, whoever held it. Commit does
// not require the caller to hold the lease; a changed row version is the
// only conflict it detects. On any error nothing is written.
func (s *Service) Commit(ctx context.Context, itemID, reviewerID uint, categoryName string, opts ...CommitOption) (*ItemView, error) {
	ctx = traced(ctx)
	start := time.Now()
	log := s.log.Module("committer").WithContext(ctx).With(
		logger.Uint64("item_id", uint64(itemID)),
		logger.Uint64("reviewer_id", uint64(reviewerID)),
		logger.String("category", categoryName))

	var o commitOptions
	for _, opt := range opts {
		opt(&o)
	}

	view, err := s.commit(ctx, itemID, reviewerID, categoryName, &o)

	outcome := metrics.OutcomeCommitted
	if err != nil {
		outcome = outcomeFor(err)
	}
	s.metrics.RecordCommit(outcome, time.Since(start))

	switch {
	case err == nil:
		log.Info("item classified", logger.String("previous_category", view.previous))
		return &view.ItemView, nil
	case errors.Is(err, ErrConcurrentModification), errors.Is(err, ErrLockTimeout):
		log.Warn("commit rejected", logger.Error(err))
	case outcome == metrics.OutcomeNotFound:
		log.Debug("commit rejected", logger.Error(err))
	default:
		log.Error("commit failed", logger.Error(err))
	}
	return nil, wrap(err, "commit",
		"item_id", itemID,
		"reviewer_id", reviewerID,
		"category", categoryName)
}

type committed struct {
	ItemView
	previous string
}

func (s *Service) commit(ctx context.Context, itemID, reviewerID uint, categoryName string, o *commitOptions) (*committed, error) {
	var result *committed
	err := s.tx.InTx(ctx, func(tx *repository.Tx) error {
		item, err := tx.Items.GetByIDForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if o.expectedVersion != nil && *o.expectedVersion != item.Version {
			return ErrConcurrentModification
		}

		category, err := s.directory.byName(ctx, tx.Categories, categoryName)
		if err != nil {
			return err
		}
		if _, err := tx.Reviewers.GetByID(ctx, reviewerID); err != nil {
			return err
		}

		record := &entities.Classification{
			ReviewerID:         reviewerID,
			ItemID:             item.ID,
			PreviousCategoryID: item.CurrentCategoryID,
			NewCategoryID:      category.ID,
			ClassifiedAt:       s.now().UnixMilli(),
		}
		if err := tx.Classifications.Append(ctx, record); err != nil {
			if errors.Is(err, repository.ErrForeignKey) {
				// item and reviewer are verified above, so the cached
				// category must have been deleted
				s.directory.cache.Flush()
				return ErrCategoryNotFound
			}
			return err
		}

		ok, err := tx.Items.ApplyClassification(ctx, item.ID, item.Version, category.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConcurrentModification
		}

		fresh, err := tx.Items.GetByID(ctx, item.ID)
		if err != nil {
			return err
		}
		previous, err := s.directory.byID(ctx, tx.Categories, item.CurrentCategoryID)
		if err != nil {
			return err
		}
		result = &committed{ItemView: s.itemView(fresh), previous: previous.Name}
		return nil
	})
	if err != nil {
		return nil, fromRepository(err)
	}
	return result, nil
}
