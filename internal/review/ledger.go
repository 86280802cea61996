package review

import (
	"context"
	"math"
	"time"

	"github.com/denrzv/audio-review-backend/internal/logger"
)

// HistoryPage returns one page of reviewerID's classification records,
// newest first. page is 0-based. Records committed in the same millisecond
// are ordered by descending record id, so consecutive pages never overlap.
// Page sizes above the configured maximum are clamped.
func (s *Service) HistoryPage(ctx context.Context, reviewerID uint, page, pageSize int) (*HistoryPage, error) {
	ctx = traced(ctx)
	start := time.Now()
	log := s.log.Module("ledger").WithContext(ctx)

	result, err := s.historyPage(ctx, reviewerID, page, pageSize)

	status := "success"
	if err != nil {
		status = outcomeFor(err)
	}
	s.metrics.RecordHistoryQuery(status, time.Since(start))

	if err != nil {
		return nil, wrap(err, "history_page",
			"reviewer_id", reviewerID,
			"page", page,
			"page_size", pageSize)
	}
	log.Debug("history page served",
		logger.Uint64("reviewer_id", uint64(reviewerID)),
		logger.Int("page", page),
		logger.Int("entries", len(result.Entries)))
	return result, nil
}

func (s *Service) historyPage(ctx context.Context, reviewerID uint, page, pageSize int) (*HistoryPage, error) {
	if page < 0 || pageSize <= 0 {
		return nil, ErrInvalidPage
	}
	pageSize = min(pageSize, s.cfg.MaxPageSize)
	if page > math.MaxInt/pageSize {
		return nil, ErrInvalidPage
	}

	if _, err := s.reviewers.GetByID(ctx, reviewerID); err != nil {
		return nil, fromRepository(err)
	}

	total, err := s.classifications.CountByReviewer(ctx, reviewerID)
	if err != nil {
		return nil, fromRepository(err)
	}

	result := &HistoryPage{
		Entries:  []HistoryEntry{},
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
	offset := page * pageSize
	if int64(offset) >= total {
		return result, nil
	}

	records, err := s.classifications.PageByReviewer(ctx, reviewerID, offset, pageSize)
	if err != nil {
		return nil, fromRepository(err)
	}
	for i := range records {
		result.Entries = append(result.Entries, s.historyEntry(&records[i]))
	}
	return result, nil
}
