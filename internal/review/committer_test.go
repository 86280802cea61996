package review

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/denrzv/audio-review-backend/internal/datastore/entities"
	"github.com/denrzv/audio-review-backend/internal/datastore/repository"
	"github.com/denrzv/audio-review-backend/internal/errors"
	"github.com/denrzv/audio-review-backend/internal/observability/metrics"
)

func TestCommit_ClassifiesAndReleasesLease(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	alice := h.reviewer(t, "alice")
	item := h.register(t, "a.wav")
	ctx := context.Background()

	leased, err := h.svc.Acquire(ctx, alice.ID)
	require.NoError(t, err)

	h.clock.Advance(2 * time.Minute)
	got, err := h.svc.Commit(ctx, item.ID, alice.ID, "speech")
	require.NoError(t, err)
	assert.Equal(t, "Speech", got.CurrentCategory)
	assert.Nil(t, got.LeaseHolderID)
	assert.Nil(t, got.LeasedAt)
	assert.Equal(t, leased.Version+1, got.Version)

	row := h.itemRow(t, item.ID)
	assert.False(t, row.IsLeased())
	assert.Nil(t, row.LeaseHolderID)
	assert.Nil(t, row.LeasedAt)
	assert.Equal(t, "Speech", row.CurrentCategory.Name)

	var records []entities.Classification
	require.NoError(t, h.mgr.DB().Preload("PreviousCategory").Preload("NewCategory").
		Where("item_id = ?", item.ID).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, alice.ID, records[0].ReviewerID)
	assert.Equal(t, "Unclassified", records[0].PreviousCategory.Name)
	assert.Equal(t, "Speech", records[0].NewCategory.Name)
	assert.Equal(t, h.clock.Now().UnixMilli(), records[0].ClassifiedAt)

	assert.InDelta(t, 1, h.counter(t, "review_commits_total", "outcome", metrics.OutcomeCommitted), 0)
}

func TestCommit_ReclassifyRecordsPreviousCategory(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	alice := h.reviewer(t, "alice")
	item := h.register(t, "a.wav")
	ctx := context.Background()

	_, err := h.svc.Commit(ctx, item.ID, alice.ID, "Speech")
	require.NoError(t, err)
	_, err = h.svc.Commit(ctx, item.ID, alice.ID, "Music")
	require.NoError(t, err)

	page, err := h.svc.HistoryPage(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, "Speech", page.Entries[0].PreviousCategory)
	assert.Equal(t, "Music", page.Entries[0].NewCategory)
}

func TestCommit_VersionConflictWritesNothing(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	alice := h.reviewer(t, "alice")
	bob := h.reviewer(t, "bob")
	item := h.register(t, "a.wav")
	ctx := context.Background()

	_, err := h.svc.Acquire(ctx, alice.ID)
	require.NoError(t, err)
	before := h.itemRow(t, item.ID)

	// another writer changes the row after it was read
	h.tx.beforeApply(func(ctx context.Context, tx *repository.Tx, itemID uint) error {
		current, err := tx.Items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		_, err = tx.Items.StampLease(ctx, itemID, current.Version, bob.ID, 1)
		return err
	})

	_, err = h.svc.Commit(ctx, item.ID, alice.ID, "Speech")
	require.ErrorIs(t, err, ErrConcurrentModification)
	assert.True(t, errors.IsConflict(err))

	after := h.itemRow(t, item.ID)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.CurrentCategoryID, after.CurrentCategoryID)
	assert.True(t, after.HeldBy(alice.ID), "failed commit leaves the lease in place")
	assert.Equal(t, *before.LeasedAt, *after.LeasedAt)
	assert.Zero(t, h.historyCount(t, item.ID))
	assert.InDelta(t, 1, h.counter(t, "review_commits_total", "outcome", metrics.OutcomeConflict), 0)
}

func TestCommit_ExpectedVersionMismatch(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	alice := h.reviewer(t, "alice")
	item := h.register(t, "a.wav")
	ctx := context.Background()

	leased, err := h.svc.Acquire(ctx, alice.ID)
	require.NoError(t, err)

	_, err = h.svc.Commit(ctx, item.ID, alice.ID, "Speech", WithExpectedVersion(leased.Version+3))
	require.ErrorIs(t, err, ErrConcurrentModification)
	assert.Zero(t, h.historyCount(t, item.ID))

	_, err = h.svc.Commit(ctx, item.ID, alice.ID, "Speech", WithExpectedVersion(leased.Version))
	require.NoError(t, err)
}

func TestCommit_StaleHolderRejectedWithExpectedVersion(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	alice := h.reviewer(t, "alice")
	bob := h.reviewer(t, "bob")
	item := h.register(t, "a.wav")
	ctx := context.Background()

	aliceView, err := h.svc.Acquire(ctx, alice.ID)
	require.NoError(t, err)

	h.clock.Advance(testLeaseTTL + time.Minute)
	bobView, err := h.svc.Acquire(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, item.ID, bobView.ID)

	// the reclaimer commits first
	_, err = h.svc.Commit(ctx, item.ID, bob.ID, "Music", WithExpectedVersion(bobView.Version))
	require.NoError(t, err)

	// the original holder acted on a stale read
	_, err = h.svc.Commit(ctx, item.ID, alice.ID, "Speech", WithExpectedVersion(aliceView.Version))
	require.ErrorIs(t, err, ErrConcurrentModification)

	row := h.itemRow(t, item.ID)
	assert.Equal(t, "Music", row.CurrentCategory.Name)
	assert.Equal(t, int64(1), h.historyCount(t, item.ID))
}

func TestCommit_ConcurrentCommitsOnOneItem(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	alice := h.reviewer(t, "alice")
	bob := h.reviewer(t, "bob")
	item := h.register(t, "a.wav")
	ctx := context.Background()

	leased, err := h.svc.Acquire(ctx, alice.ID)
	require.NoError(t, err)

	var (
		mu        sync.Mutex
		successes int
		conflicts int
	)
	var g errgroup.Group
	for _, c := range []struct {
		reviewer uint
		category string
	}{{alice.ID, "Speech"}, {bob.ID, "Music"}} {
		g.Go(func() error {
			_, err := h.svc.Commit(ctx, item.ID, c.reviewer, c.category, WithExpectedVersion(leased.Version))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrConcurrentModification):
				conflicts++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, int64(1), h.historyCount(t, item.ID))
}

func TestCommit_Failures(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	alice := h.reviewer(t, "alice")
	item := h.register(t, "a.wav")
	ctx := context.Background()

	_, err := h.svc.Acquire(ctx, alice.ID)
	require.NoError(t, err)

	tests := []struct {
		name     string
		itemID   uint
		reviewer uint
		category string
		want     error
	}{
		{"unknown category", item.ID, alice.ID, "Birdsong", ErrCategoryNotFound},
		{"empty category", item.ID, alice.ID, "  ", ErrCategoryNotFound},
		{"unknown reviewer", item.ID, 999, "Speech", ErrReviewerNotFound},
		{"unknown item", 999, alice.ID, "Speech", ErrItemNotFound},
		{"unknown item checked before category", 999, alice.ID, "Birdsong", ErrItemNotFound},
	}
	for _, tt := range tests {
		_, err := h.svc.Commit(ctx, tt.itemID, tt.reviewer, tt.category)
		require.ErrorIs(t, err, tt.want, tt.name)
		assert.True(t, errors.IsNotFound(err), tt.name)
	}

	row := h.itemRow(t, item.ID)
	assert.True(t, row.HeldBy(alice.ID), "failed commits leave the lease in place")
	assert.Zero(t, h.historyCount(t, item.ID))
}

func TestCommit_ErrorCarriesContext(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	alice := h.reviewer(t, "alice")
	item := h.register(t, "a.wav")

	_, err := h.svc.Commit(context.Background(), item.ID, alice.ID, "Birdsong")
	var ee *errors.EnhancedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, componentName, ee.GetComponent())
	assert.Equal(t, string(errors.CategoryNotFound), ee.GetCategory())
	ctx := ee.GetContext()
	assert.Equal(t, "commit", ctx["operation"])
	assert.Equal(t, item.ID, ctx["item_id"])
	assert.Equal(t, "Birdsong", ctx["category"])
}
