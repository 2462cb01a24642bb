package lib

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
		seen[code] = true
	}

	// 50 draws from a million values colliding down to a handful would
	// point at a broken generator
	assert.Greater(t, len(seen), 40)
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

	number, err := GenerateOrderNumber(now)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^RK-20260831-[0-9A-F]{6}$`), number)
}

func TestGenerateSKU(t *testing.T) {
	sku, err := GenerateSKU("Canon EOS R5", 6)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CAN-[A-Z0-9]{6}$`), sku)

	t.Run("ShortName", func(t *testing.T) {
		sku, err := GenerateSKU("4K", 4)
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^4K-[A-Z0-9]{4}$`), sku)
	})
}

func TestGenerateRandomToken(t *testing.T) {
	a, err := GenerateRandomToken()
	require.NoError(t, err)
	b, err := GenerateRandomToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 44)
}
