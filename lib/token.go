package lib

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// GenerateOTP generates a 6-digit numeric verification code
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateSKU generates a SKU from a product name and optional suffix length
func GenerateSKU(productName string, suffixLength int) (string, error) {
	// Take first 3 letters of the product name (uppercase, alphanumeric only)
	namePart := strings.ToUpper(productName)
	namePart = strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, namePart)
	if len(namePart) > 3 {
		namePart = namePart[:3]
	}

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, suffixLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}

	return fmt.Sprintf("%s-%s", namePart, string(b)), nil
}

// GenerateOrderNumber produces a human-readable rental order reference,
// e.g. RK-20260831-4F7A2C
func GenerateOrderNumber(now time.Time) (string, error) {
	const hex = "0123456789ABCDEF"
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	for i := range b {
		b[i] = hex[int(b[i])%len(hex)]
	}
	return fmt.Sprintf("RK-%s-%s", now.UTC().Format("20060102"), string(b)), nil
}
