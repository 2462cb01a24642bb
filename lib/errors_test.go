package lib

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

// serverError mimics the shape of bun's pgdriver.Error: the SQLSTATE is
// only reachable through Field('C'), never via pgconn.PgError.
type serverError struct {
	code string
}

func (e serverError) Error() string { return "ERROR: duplicate key (SQLSTATE=" + e.code + ")" }

func (e serverError) Field(field byte) string {
	if field == 'C' {
		return e.code
	}
	return ""
}

func TestSQLState(t *testing.T) {
	t.Run("PgconnError", func(t *testing.T) {
		assert.Equal(t, "23505", SQLState(&pgconn.PgError{Code: "23505"}))
	})

	t.Run("DriverError", func(t *testing.T) {
		assert.Equal(t, "23505", SQLState(serverError{code: "23505"}))
	})

	t.Run("WrappedDriverError", func(t *testing.T) {
		err := fmt.Errorf("insert failed: %w", serverError{code: "40001"})
		assert.Equal(t, "40001", SQLState(err))
	})

	t.Run("PlainError", func(t *testing.T) {
		assert.Equal(t, "", SQLState(errors.New("connection refused")))
	})
}

func TestMapPgError(t *testing.T) {
	t.Run("UniqueViolationFromDriver", func(t *testing.T) {
		assert.ErrorIs(t, MapPgError(serverError{code: "23505"}), ErrConflict)
	})

	t.Run("UniqueViolationFromPgconn", func(t *testing.T) {
		assert.ErrorIs(t, MapPgError(&pgconn.PgError{Code: "23505"}), ErrConflict)
	})

	t.Run("NoDataFound", func(t *testing.T) {
		assert.ErrorIs(t, MapPgError(serverError{code: "P0002"}), ErrNotFound)
	})

	t.Run("UnknownCodePassesThrough", func(t *testing.T) {
		err := serverError{code: "42601"}
		assert.Equal(t, error(err), MapPgError(err))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(serverError{code: "23505"}))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(ErrConflict))
	assert.True(t, IsUniqueViolation(fmt.Errorf("signup: %w", serverError{code: "23505"})))
	assert.False(t, IsUniqueViolation(serverError{code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
