package review

import (
	"github.com/denrzv/audio-review-backend/internal/datastore/repository"
	"github.com/denrzv/audio-review-backend/internal/errors"
)

const componentName = "review"

// Outcomes callers branch on. They are returned wrapped in an
// *errors.EnhancedError; match them with errors.Is.
var (
	// ErrNoEligibleItem means nothing can be leased right now. It is an
	// expected condition, not a fault.
	ErrNoEligibleItem = errors.NewStd("no eligible item")

	// ErrItemVanished means the chosen item was deleted between selection
	// and the locking re-read. Callers may retry acquire once.
	ErrItemVanished = errors.NewStd("item vanished")

	ErrItemNotFound     = errors.NewStd("item not found")
	ErrCategoryNotFound = errors.NewStd("category not found")
	ErrReviewerNotFound = errors.NewStd("reviewer not found")

	// ErrConcurrentModification means the item changed after it was read.
	// Nothing was written; callers retry acquire and commit from scratch.
	ErrConcurrentModification = errors.NewStd("item was modified concurrently")

	// ErrLockTimeout means the store gave up waiting for the item's row lock.
	ErrLockTimeout = errors.NewStd("timed out waiting for item lock")

	ErrInvalidPage       = errors.NewStd("invalid page request")
	ErrInvalidInput      = errors.NewStd("invalid input")
	ErrDuplicateItem     = errors.NewStd("item already registered")
	ErrDuplicateCategory = errors.NewStd("category name or shortcut already exists")
	ErrDuplicateReviewer = errors.NewStd("reviewer already exists")
	ErrCategoryInUse     = errors.NewStd("category is in use")
)

// categoryOf maps an outcome to its error category.
func categoryOf(err error) errors.ErrorCategory {
	switch {
	case errors.Is(err, ErrNoEligibleItem):
		return errors.CategoryState
	case errors.Is(err, ErrItemVanished),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, ErrReviewerNotFound):
		return errors.CategoryNotFound
	case errors.Is(err, ErrConcurrentModification),
		errors.Is(err, ErrDuplicateItem),
		errors.Is(err, ErrDuplicateCategory),
		errors.Is(err, ErrDuplicateReviewer),
		errors.Is(err, ErrCategoryInUse):
		return errors.CategoryConflict
	case errors.Is(err, ErrLockTimeout):
		return errors.CategoryTimeout
	case errors.Is(err, ErrInvalidPage), errors.Is(err, ErrInvalidInput):
		return errors.CategoryValidation
	default:
		return errors.CategoryDatabase
	}
}

// fromRepository converts repository sentinels into review outcomes.
// Anything unrecognized is returned unchanged and treated as a storage failure.
func fromRepository(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrItemNotFound):
		return ErrItemNotFound
	case errors.Is(err, repository.ErrCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repository.ErrReviewerNotFound):
		return ErrReviewerNotFound
	case errors.Is(err, repository.ErrCategoryInUse):
		return ErrCategoryInUse
	case errors.Is(err, repository.ErrLockTimeout):
		return errors.Join(ErrLockTimeout, err)
	case errors.Is(err, repository.ErrDeadlock):
		// the store rolled the transaction back to break the cycle
		return errors.Join(ErrConcurrentModification, err)
	case errors.Is(err, repository.ErrInvalidInput):
		return errors.Join(ErrInvalidInput, err)
	}
	return err
}

// wrap builds the enhanced error returned from public operations.
// Outcomes already wrapped are returned as is.
func wrap(err error, operation string, kv ...any) error {
	if err == nil {
		return nil
	}
	var ee *errors.EnhancedError
	if errors.As(err, &ee) && ee.GetComponent() == componentName {
		return err
	}

	b := errors.New(err).
		Component(componentName).
		Category(categoryOf(err)).
		Context("operation", operation)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			b = b.Context(key, kv[i+1])
		}
	}
	return b.Build()
}
