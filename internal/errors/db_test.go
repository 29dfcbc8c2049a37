package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDBError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.Nil(t, MapDBError(nil))
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		err := MapDBError(pgx.ErrNoRows)
		assert.True(t, IsNotFound(err))
	})

	t.Run("context deadline becomes timeout", func(t *testing.T) {
		err := MapDBError(context.DeadlineExceeded)
		assert.Equal(t, ErrCodeTimeout, GetCode(err))
	})

	t.Run("context cancel becomes canceled", func(t *testing.T) {
		err := MapDBError(context.Canceled)
		assert.Equal(t, ErrCodeCanceled, GetCode(err))
	})

	t.Run("unique violation becomes conflict with field", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:   pgerrcode.UniqueViolation,
			Detail: "Key (email)=(amy@example.com) already exists.",
		}
		err := MapDBError(pgErr)
		require.True(t, IsConflict(err))
		assert.Equal(t, "email", GetField(err))
	})

	t.Run("unique violation prefers column metadata", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:       pgerrcode.UniqueViolation,
			ColumnName: "email",
		}
		assert.Equal(t, "email", GetField(MapDBError(pgErr)))
	})

	t.Run("not null violation becomes validation", func(t *testing.T) {
		pgErr := &pgconn.PgError{
			Code:       pgerrcode.NotNullViolation,
			ColumnName: "role",
		}
		err := MapDBError(pgErr)
		require.True(t, IsValidation(err))
		assert.Equal(t, "role", GetField(err))
	})

	t.Run("check violation becomes validation", func(t *testing.T) {
		err := MapDBError(&pgconn.PgError{Code: pgerrcode.CheckViolation})
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown pg error becomes internal", func(t *testing.T) {
		err := MapDBError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})
		assert.True(t, IsInternal(err))
	})

	t.Run("unrecognized error passes through", func(t *testing.T) {
		plain := errors.New("dial tcp: refused")
		assert.Equal(t, plain, MapDBError(plain))
	})
}
