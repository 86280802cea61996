// Package repository provides repository interfaces and GORM implementations
// for the review schema.
package repository

import (
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/denrzv/audio-review-backend/internal/errors"
)

// Sentinel errors for repository operations.
// Callers match these with errors.Is; GORM and driver errors never leak
// past this package unclassified.
var (
	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.NewStd("item not found")

	// ErrCategoryNotFound indicates the requested category does not exist.
	ErrCategoryNotFound = errors.NewStd("category not found")

	// ErrReviewerNotFound indicates the requested reviewer does not exist.
	ErrReviewerNotFound = errors.NewStd("reviewer not found")

	// ErrCategoryInUse indicates a category is still referenced and cannot be deleted.
	ErrCategoryInUse = errors.NewStd("category is in use")

	// ErrDuplicateKey indicates a unique constraint violation.
	ErrDuplicateKey = errors.NewStd("duplicate key")

	// ErrLockTimeout indicates the store gave up waiting for a lock.
	ErrLockTimeout = errors.NewStd("lock wait timeout")

	// ErrForeignKey indicates a write violated a foreign key constraint.
	ErrForeignKey = errors.NewStd("foreign key constraint violated")

	// ErrDeadlock indicates the store aborted the transaction to break a deadlock.
	ErrDeadlock = errors.NewStd("deadlock detected")

	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.NewStd("invalid input")
)

// MySQL server error numbers
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWait        = 1205
	mysqlErrDeadlock        = 1213
	mysqlErrRowIsReferenced = 1451
	mysqlErrNoReferencedRow = 1452
)

// translateError maps driver errors onto the package sentinels. The original
// error stays in the chain so nothing is lost for logging.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrDuplicateEntry:
			return errors.Join(ErrDuplicateKey, err)
		case mysqlErrLockWait:
			return errors.Join(ErrLockTimeout, err)
		case mysqlErrDeadlock:
			return errors.Join(ErrDeadlock, err)
		case mysqlErrRowIsReferenced, mysqlErrNoReferencedRow:
			return errors.Join(ErrForeignKey, err)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch {
		case liteErr.ExtendedCode == sqlite3.ErrConstraintUnique,
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return errors.Join(ErrDuplicateKey, err)
		case liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey:
			return errors.Join(ErrForeignKey, err)
		case liteErr.Code == sqlite3.ErrBusy, liteErr.Code == sqlite3.ErrLocked:
			return errors.Join(ErrLockTimeout, err)
		}
		return err
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Join(ErrDuplicateKey, err)
	}

	// Wrapped driver errors that lost their type
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "database table is locked"):
		return errors.Join(ErrLockTimeout, err)
	case strings.Contains(msg, "unique constraint failed"):
		return errors.Join(ErrDuplicateKey, err)
	case strings.Contains(msg, "foreign key constraint failed"):
		return errors.Join(ErrForeignKey, err)
	}
	return err
}
