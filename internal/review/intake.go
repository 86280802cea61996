package review

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
	"github.com/denrzv/audio-review-backend/internal/datastore/repository"
	"github.com/denrzv/audio-review-backend/internal/errors"
	"github.com/denrzv/audio-review-backend/internal/logger"
	"github.com/denrzv/audio-review-backend/internal/observability/metrics"
)

// Register records a new item uploaded by uploaderID.
//
// The initial category is the first category, in id order, whose name
// occurs in the file name ignoring case. Files that match nothing go to the
// Undefined category. The item starts unclassified and unleased. An empty
// contentRef defaults to the file name; content references are unique.
func (s *Service) Register(ctx context.Context, uploaderID uint, filename, contentRef string) (*ItemView, error) {
	ctx = traced(ctx)
	start := time.Now()
	log := s.log.Module("intake").WithContext(ctx)

	view, err := s.register(ctx, uploaderID, filename, contentRef)

	outcome := metrics.OutcomeRegistered
	if err != nil {
		outcome = outcomeFor(err)
	}
	s.metrics.RecordRegistration(outcome, time.Since(start))

	if err != nil {
		return nil, wrap(err, "register",
			"uploader_id", uploaderID,
			"filename", filename)
	}
	log.Info("item registered",
		logger.Uint64("item_id", uint64(view.ID)),
		logger.String("initial_category", view.InitialCategory))
	return view, nil
}

func (s *Service) register(ctx context.Context, uploaderID uint, filename, contentRef string) (*ItemView, error) {
	filename = path.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == "/" {
		return nil, ErrInvalidInput
	}
	contentRef = strings.TrimSpace(contentRef)
	if contentRef == "" {
		contentRef = filename
	}

	if _, err := s.reviewers.GetByID(ctx, uploaderID); err != nil {
		return nil, fromRepository(err)
	}
	unclassified, err := s.directory.byName(ctx, s.directory.repo, s.cfg.Unclassified)
	if err != nil {
		return nil, err
	}
	initial, err := s.inferCategory(ctx, filename)
	if err != nil {
		return nil, err
	}

	item := &entities.Item{
		Filename:          filename,
		ContentRef:        contentRef,
		InitialCategoryID: initial.ID,
		CurrentCategoryID: unclassified.ID,
		UploadedByID:      uploaderID,
		UploadedAt:        s.now().UnixMilli(),
	}
	if err := s.items.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateItem
		}
		return nil, fromRepository(err)
	}

	item.InitialCategory = initial
	item.CurrentCategory = unclassified
	view := s.itemView(item)
	return &view, nil
}

// inferCategory picks the initial category for a file name.
func (s *Service) inferCategory(ctx context.Context, filename string) (*entities.Category, error) {
	all, err := s.directory.All(ctx)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(filename)
	sentinel := entities.NormalizeCategoryName(s.cfg.Unclassified)
	for i := range all {
		if all[i].NameKey == sentinel {
			continue
		}
		if strings.Contains(lower, all[i].NameKey) {
			return &all[i], nil
		}
	}
	return s.directory.byName(ctx, s.directory.repo, UndefinedCategory)
}

// Item returns the current projection of an item.
func (s *Service) Item(ctx context.Context, itemID uint) (*ItemView, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, wrap(fromRepository(err), "get_item", "item_id", itemID)
	}
	view := s.itemView(item)
	return &view, nil
}

// AddReviewer registers a reviewer identity.
func (s *Service) AddReviewer(ctx context.Context, username string) (*entities.Reviewer, error) {
	r := &entities.Reviewer{Username: username}
	err := s.reviewers.Create(ctx, r)
	switch {
	case errors.Is(err, repository.ErrDuplicateKey):
		return nil, wrap(ErrDuplicateReviewer, "add_reviewer", "username", username)
	case err != nil:
		return nil, wrap(fromRepository(err), "add_reviewer", "username", username)
	}
	s.log.Module("intake").Info("reviewer added",
		logger.Uint64("reviewer_id", uint64(r.ID)),
		logger.String("username", r.Username))
	return r, nil
}

// ReviewerByUsername looks a reviewer up by username.
func (s *Service) ReviewerByUsername(ctx context.Context, username string) (*entities.Reviewer, error) {
	r, err := s.reviewers.GetByUsername(ctx, username)
	if err != nil {
		return nil, wrap(fromRepository(err), "lookup_reviewer", "username", username)
	}
	return r, nil
}
