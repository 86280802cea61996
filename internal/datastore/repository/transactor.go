package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/denrzv/audio-review-backend/internal/errors"
	"github.com/denrzv/audio-review-backend/internal/observability/metrics"
)

// Tx exposes the repositories bound to one database transaction.
type Tx struct {
	Items           ItemRepository
	Categories      CategoryRepository
	Reviewers       ReviewerRepository
	Classifications ClassificationRepository
}

// Transactor runs functions inside a database transaction. Returning an
// error from fn rolls the transaction back; returning nil commits it.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx *Tx) error) error
}

type gormTransactor struct {
	db      *gorm.DB
	metrics *metrics.DatastoreMetrics
}

// NewTransactor creates a Transactor over db. m may be nil.
func NewTransactor(db *gorm.DB, m *metrics.DatastoreMetrics) Transactor {
	return &gormTransactor{db: db, metrics: m}
}

// InTx runs fn in a transaction and records its outcome.
func (t *gormTransactor) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	start := time.Now()
	err := t.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&Tx{
			Items:           NewItemRepository(db),
			Categories:      NewCategoryRepository(db),
			Reviewers:       NewReviewerRepository(db),
			Classifications: NewClassificationRepository(db),
		})
	})

	if err == nil {
		t.metrics.RecordTransaction(metrics.TxCommitted, time.Since(start))
		return nil
	}

	t.metrics.RecordTransaction(metrics.TxRolledBack, time.Since(start))
	err = translateError(err)
	switch {
	case errors.Is(err, ErrDeadlock):
		t.metrics.RecordLockContention("deadlock")
		t.metrics.RecordTransactionError("deadlock")
	case errors.Is(err, ErrLockTimeout):
		t.metrics.RecordLockContention("lock_timeout")
		t.metrics.RecordTransactionError("lock_timeout")
	}
	return err
}
