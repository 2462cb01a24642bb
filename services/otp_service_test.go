package services

import (
	"rentkart_server/lib"
	"rentkart_server/structs/tables"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCode(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	record := &tables.VerificationCode{
		Email:     "renter@example.com",
		Code:      "483920",
		ExpiresAt: now.Add(10 * time.Minute),
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, ValidateCode(record, "483920", now))
	})

	t.Run("Mismatch", func(t *testing.T) {
		assert.ErrorIs(t, ValidateCode(record, "000000", now), lib.ErrOTPMismatch)
	})

	t.Run("Expired", func(t *testing.T) {
		assert.ErrorIs(t, ValidateCode(record, "483920", now.Add(11*time.Minute)), lib.ErrOTPExpired)
	})

	t.Run("ExpiredAtExactBoundary", func(t *testing.T) {
		// Expiry is exclusive: the code still works at the exact instant
		assert.NoError(t, ValidateCode(record, "483920", record.ExpiresAt))
	})

	t.Run("NilRecord", func(t *testing.T) {
		assert.ErrorIs(t, ValidateCode(nil, "483920", now), lib.ErrOTPMismatch)
	})
}
