package lib

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Database errors
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// Auth errors
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Rental lifecycle errors
var (
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrOTPExpired         = errors.New("verification code expired")
	ErrOTPMismatch        = errors.New("verification code mismatch")
	ErrOTPCooldown        = errors.New("verification code recently sent")
	ErrProductNotRentable = errors.New("product is not available for rent")
)

// sqlStater is the slice of a driver error that carries the SQLSTATE.
// bun's pgdriver reports server errors as pgdriver.Error, which exposes
// the code through Field('C') rather than a struct field.
type sqlStater interface {
	Field(field byte) string
}

var _ sqlStater = pgdriver.Error{}

// SQLState extracts the five-character SQLSTATE from a postgres error,
// whichever driver produced it. Returns "" for non-server errors.
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var driverErr sqlStater
	if errors.As(err, &driverErr) {
		return driverErr.Field('C')
	}
	return ""
}

func MapPgError(err error) error {
	switch SQLState(err) {
	case "23505": // unique_violation
		return ErrConflict
	case "P0002": // no_data_found
		return ErrNotFound
	}
	return err
}

// IsNotFound reports whether err maps to a missing row
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUniqueViolation reports whether err is a unique constraint violation
func IsUniqueViolation(err error) bool {
	return SQLState(err) == "23505" || errors.Is(err, ErrConflict)
}
