package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// codedError carries a SQLSTATE the way bun's pgdriver does, through
// Field('C').
type codedError struct {
	code string
}

func (e codedError) Error() string { return "ERROR: SQLSTATE=" + e.code }

func (e codedError) Field(field byte) string {
	if field == 'C' {
		return e.code
	}
	return ""
}

func TestIsRetryableError(t *testing.T) {
	t.Run("TransientServerCodes", func(t *testing.T) {
		assert.True(t, isRetryableError(codedError{code: "40001"})) // serialization failure
		assert.True(t, isRetryableError(codedError{code: "40P01"})) // deadlock
		assert.True(t, isRetryableError(codedError{code: "08006"})) // connection failure
		assert.True(t, isRetryableError(codedError{code: "53300"})) // too many connections
	})

	t.Run("DataShapedCodesAreFinal", func(t *testing.T) {
		assert.False(t, isRetryableError(codedError{code: "23505"})) // unique violation
		assert.False(t, isRetryableError(codedError{code: "42601"})) // syntax error
	})

	t.Run("ContextAndNoRows", func(t *testing.T) {
		assert.False(t, isRetryableError(context.DeadlineExceeded))
		assert.False(t, isRetryableError(sql.ErrNoRows))
	})

	t.Run("NetworkStringFallback", func(t *testing.T) {
		assert.True(t, isRetryableError(errors.New("dial tcp: connection refused")))
		assert.False(t, isRetryableError(errors.New("something unrelated")))
	})
}
