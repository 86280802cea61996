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

// errCandidateTaken means another reviewer leased or classified the
// candidate after it was selected. Acquire moves on to the next one.
var errCandidateTaken = errors.NewStd("candidate no longer eligible")

// Acquire leases one eligible item to reviewerID and returns it.
//
// An item is eligible while it is unclassified and either unleased, leased
// to reviewerID, or carrying a lease older than the lease TTL. An item the
// reviewer already holds is preferred so a reload shows the same item;
// otherwise candidates are tried in random order. Each candidate is
// re-read under a row lock and re-checked before the lease is written.
//
// Returns ErrNoEligibleItem when nothing can be leased, and ErrItemVanished
// when a selected item was deleted before it could be locked.
func (s *Service) Acquire(ctx context.Context, reviewerID uint) (*ItemView, error) {
	ctx = traced(ctx)
	start := time.Now()
	log := s.log.Module("allocator").WithContext(ctx).
		With(logger.Uint64("reviewer_id", uint64(reviewerID)))

	view, tried, err := s.acquire(ctx, reviewerID, log)

	outcome := metrics.OutcomeLeased
	switch {
	case err != nil:
		outcome = outcomeFor(err)
	case view.resumed:
		outcome = metrics.OutcomeResumed
	}
	s.metrics.RecordAcquire(outcome, tried, time.Since(start))

	if err != nil {
		return nil, wrap(err, "acquire", "reviewer_id", reviewerID)
	}
	return &view.ItemView, nil
}

// leased is an acquired item plus whether the caller already held it.
type leased struct {
	ItemView
	resumed bool
}

func (s *Service) acquire(ctx context.Context, reviewerID uint, log logger.Logger) (*leased, int, error) {
	if _, err := s.reviewers.GetByID(ctx, reviewerID); err != nil {
		return nil, 0, fromRepository(err)
	}
	unclassified, err := s.directory.byName(ctx, s.directory.repo, s.cfg.Unclassified)
	if err != nil {
		log.Error("unclassified category missing",
			logger.String("category", s.cfg.Unclassified),
			logger.Error(err))
		return nil, 0, err
	}

	now := s.now()
	q := repository.EligibilityQuery{
		ReviewerID:     reviewerID,
		UnclassifiedID: unclassified.ID,
		CutoffMs:       now.Add(-s.cfg.LeaseTTL).UnixMilli(),
	}

	candidates, err := s.candidates(ctx, q)
	if err != nil {
		log.Error("candidate selection failed", logger.Error(err))
		return nil, 0, fromRepository(err)
	}
	if len(candidates) == 0 {
		log.Debug("no eligible item")
		return nil, 0, ErrNoEligibleItem
	}

	for i, id := range candidates {
		itemLog := log.With(logger.Uint64("item_id", uint64(id)))

		result, err := s.tryLease(ctx, id, q, now.UnixMilli())
		switch {
		case err == nil:
			itemLog.Info("item leased",
				logger.Bool("resumed", result.resumed),
				logger.Int("candidates_tried", i+1))
			return result, i + 1, nil
		case errors.Is(err, errCandidateTaken):
			s.metrics.RecordLeaseContention()
			itemLog.Debug("candidate taken by another reviewer")
		case errors.Is(err, ErrItemVanished):
			itemLog.Warn("candidate vanished before lock")
			return nil, i + 1, err
		default:
			itemLog.Error("lease write failed", logger.Error(err))
			return nil, i + 1, err
		}
	}

	log.Debug("all candidates taken", logger.Int("candidates_tried", len(candidates)))
	return nil, len(candidates), ErrNoEligibleItem
}

// candidates returns the reviewer's own outstanding lease first, followed
// by a random batch of other eligible items.
func (s *Service) candidates(ctx context.Context, q repository.EligibilityQuery) ([]uint, error) {
	var ids []uint

	own, err := s.items.FindLeasedTo(ctx, q.ReviewerID, q.UnclassifiedID)
	switch {
	case err == nil:
		ids = append(ids, own.ID)
	case !errors.Is(err, repository.ErrItemNotFound):
		return nil, err
	}

	random, err := s.items.RandomEligibleIDs(ctx, q, s.cfg.CandidateBatch)
	if err != nil {
		return nil, err
	}
	for _, id := range random {
		if len(ids) > 0 && id == ids[0] {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// tryLease locks one candidate, re-validates it and stamps the lease.
func (s *Service) tryLease(ctx context.Context, id uint, q repository.EligibilityQuery, nowMs int64) (*leased, error) {
	var result *leased
	err := s.tx.InTx(ctx, func(tx *repository.Tx) error {
		item, err := tx.Items.GetByIDForUpdate(ctx, id)
		if errors.Is(err, repository.ErrItemNotFound) {
			return ErrItemVanished
		}
		if err != nil {
			return err
		}
		if !eligible(item, q) {
			return errCandidateTaken
		}

		resumed := heldActively(item, q)
		if !resumed {
			ok, err := tx.Items.StampLease(ctx, item.ID, item.Version, q.ReviewerID, nowMs)
			if err != nil {
				return err
			}
			if !ok {
				return errCandidateTaken
			}
		}

		fresh, err := tx.Items.GetByID(ctx, item.ID)
		if err != nil {
			return err
		}
		result = &leased{ItemView: s.itemView(fresh), resumed: resumed}
		return nil
	})
	if err != nil {
		return nil, fromRepository(err)
	}
	return result, nil
}

// eligible evaluates the lease predicate against a locked row.
func eligible(item *entities.Item, q repository.EligibilityQuery) bool {
	if item.CurrentCategoryID != q.UnclassifiedID {
		return false
	}
	if !item.IsLeased() || item.HeldBy(q.ReviewerID) {
		return true
	}
	return *item.LeasedAt < q.CutoffMs
}

// heldActively reports whether the reviewer holds an unexpired lease on
// item. Such a lease is returned as is; an expired one is re-stamped.
func heldActively(item *entities.Item, q repository.EligibilityQuery) bool {
	return item.IsLeased() && item.HeldBy(q.ReviewerID) && *item.LeasedAt >= q.CutoffMs
}

// outcomeFor maps an error to its metrics outcome label.
func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrNoEligibleItem):
		return metrics.OutcomeNoItem
	case errors.Is(err, ErrItemVanished):
		return metrics.OutcomeVanished
	case errors.Is(err, ErrConcurrentModification):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrLockTimeout):
		return metrics.OutcomeLockWait
	case errors.Is(err, ErrDuplicateItem):
		return metrics.OutcomeDuplicate
	case errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, ErrReviewerNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
