package repository

import (
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/denrzv/audio-review-backend/internal/errors"
)

func TestTranslateError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, ErrDuplicateKey},
		{"mysql lock wait", &mysql.MySQLError{Number: 1205}, ErrLockTimeout},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, ErrDeadlock},
		{"mysql fk parent", &mysql.MySQLError{Number: 1451}, ErrForeignKey},
		{"mysql fk child", &mysql.MySQLError{Number: 1452}, ErrForeignKey},
		{"wrapped mysql", fmt.Errorf("exec: %w", &mysql.MySQLError{Number: 1213}), ErrDeadlock},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, ErrDuplicateKey},
		{"sqlite pk", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, ErrDuplicateKey},
		{"sqlite fk", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, ErrForeignKey},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, ErrLockTimeout},
		{"sqlite locked", sqlite3.Error{Code: sqlite3.ErrLocked}, ErrLockTimeout},
		{"gorm duplicated", gorm.ErrDuplicatedKey, ErrDuplicateKey},
		{"message only", errors.NewStd("database is locked (5)"), ErrLockTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := translateError(tt.in)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.in, "original error stays in the chain")
		})
	}
}

func TestTranslateError_PassThrough(t *testing.T) {
	t.Parallel()

	assert.NoError(t, translateError(nil))

	plain := errors.NewStd("something else")
	assert.Equal(t, plain, translateError(plain))

	other := &mysql.MySQLError{Number: 1045}
	assert.Equal(t, error(other), translateError(other))
}
